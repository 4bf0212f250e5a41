// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Bearer token forwarded to the rental-mngt API
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names to
// their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"Health":       SecurityPublic,
	"DownloadFile": SecurityPublic, // presigned key is the credential
	"QuotePrice":   SecurityPublic,

	// gRPC health & reflection - Public
	"/grpc.health.v1.Health/Check":                                   SecurityPublic,
	"/grpc.health.v1.Health/Watch":                                   SecurityPublic,
	"/grpc.health.v1.Health/List":                                    SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityPublic,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityPublic,

	// Cache store - Access Protected
	"GetStore":          SecurityAccess,
	"InitializeStore":   SecurityAccess,
	"ClearStore":        SecurityAccess,
	"RefreshCollection": SecurityAccess,
	"ListEmails":        SecurityAccess,

	// Machines - Access Protected
	"ListMachines":       SecurityAccess,
	"CreateMachine":      SecurityAccess,
	"GetMachine":         SecurityAccess,
	"DeleteMachine":      SecurityAccess,
	"EditMachine":        SecurityAccess,
	"SetMachineFields":   SecurityAccess,
	"SaveMachine":        SecurityAccess,
	"UpdateMachineImage": SecurityAccess,
	"RecordMaintenance":  SecurityAccess,
	"ListAvailableParts": SecurityAccess,

	// Rentals - Access Protected
	"ListRentals":      SecurityAccess,
	"CreateRental":     SecurityAccess,
	"GetRental":        SecurityAccess,
	"DeleteRental":     SecurityAccess,
	"EditRental":       SecurityAccess,
	"SetRentalFields":  SecurityAccess,
	"SaveRental":       SecurityAccess,
	"ToggleRentalPaid": SecurityAccess,
	"QuoteRental":      SecurityAccess,
	"RentalAgreement":  SecurityAccess,

	// Config - Access Protected
	"ListConfig":   SecurityAccess,
	"AddConfig":    SecurityAccess,
	"UpdateConfig": SecurityAccess,
	"DeleteConfig": SecurityAccess,

	// Notifications & change log - Access Protected
	"ListNotifications":    SecurityAccess,
	"MarkNotificationRead": SecurityAccess,
	"ListChangeEvents":     SecurityAccess,

	// Google account link - Access Protected
	"GoogleAuthStatus": SecurityAccess,
	"GoogleAuthURL":    SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
