package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rs/cors"

	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/security"
	"rental-mngt-admin/internal/service"
	"rental-mngt-admin/internal/storage"
	"rental-mngt-admin/internal/store"
)

// defaultMaxUpload bounds multipart bodies (machine pictures).
const defaultMaxUpload = 16 << 20

// Dependencies are the collaborators of the UI-facing API.
type Dependencies struct {
	Store          *store.Store
	Machines       service.MachineService
	Rentals        service.RentalService
	Config         service.ConfigService
	Notifications  service.NotificationService
	ChangeLog      service.ChangeLogService
	API            gateway.API
	Inspector      security.TokenInspector
	Files          storage.FileReader // nil unless agreements are served by this process
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Handler serves the JSON API the back-office UI binds to.
type Handler struct {
	store         *store.Store
	machines      service.MachineService
	rentals       service.RentalService
	config        service.ConfigService
	notifications service.NotificationService
	changeLog     service.ChangeLogService
	api           gateway.API
	maxUpload     int64
}

// NewRouter builds the route table and wraps it in the middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	h := &Handler{
		store:         deps.Store,
		machines:      deps.Machines,
		rentals:       deps.Rentals,
		config:        deps.Config,
		notifications: deps.Notifications,
		changeLog:     deps.ChangeLog,
		api:           deps.API,
		maxUpload:     deps.MaxUploadBytes,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUpload
	}

	router := mux.NewRouter()
	router.Use(authenticate(deps.Inspector), checkRecordID)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet).Name("Health")
	if deps.Files != nil {
		RegisterMockStorageRoutes(router, deps.Files)
	}

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/quote", h.QuotePrice).Methods(http.MethodPost).Name("QuotePrice")

	v1.HandleFunc("/store", h.GetStore).Methods(http.MethodGet).Name("GetStore")
	v1.HandleFunc("/store", h.ClearStore).Methods(http.MethodDelete).Name("ClearStore")
	v1.HandleFunc("/store/initialize", h.InitializeStore).Methods(http.MethodPost).Name("InitializeStore")
	v1.HandleFunc("/store/{collection}/refresh", h.RefreshCollection).Methods(http.MethodPost).Name("RefreshCollection")
	v1.HandleFunc("/emails", h.ListEmails).Methods(http.MethodGet).Name("ListEmails")

	v1.HandleFunc("/machines", h.ListMachines).Methods(http.MethodGet).Name("ListMachines")
	v1.HandleFunc("/machines", h.CreateMachine).Methods(http.MethodPost).Name("CreateMachine")
	v1.HandleFunc("/machines/parts", h.ListAvailableParts).Methods(http.MethodGet).Name("ListAvailableParts")
	v1.HandleFunc("/machines/{id}", h.GetMachine).Methods(http.MethodGet).Name("GetMachine")
	v1.HandleFunc("/machines/{id}", h.DeleteMachine).Methods(http.MethodDelete).Name("DeleteMachine")
	v1.HandleFunc("/machines/{id}/edit", h.EditMachine).Methods(http.MethodPost).Name("EditMachine")
	v1.HandleFunc("/machines/{id}/edit", h.SetMachineFields).Methods(http.MethodPatch).Name("SetMachineFields")
	v1.HandleFunc("/machines/{id}/save", h.SaveMachine).Methods(http.MethodPost).Name("SaveMachine")
	v1.HandleFunc("/machines/{id}/image", h.UpdateMachineImage).Methods(http.MethodPut).Name("UpdateMachineImage")
	v1.HandleFunc("/machines/{id}/maintenance", h.RecordMaintenance).Methods(http.MethodPost).Name("RecordMaintenance")
	v1.HandleFunc("/machines/{id}/rentals", h.CreateRental).Methods(http.MethodPost).Name("CreateRental")

	v1.HandleFunc("/rentals", h.ListRentals).Methods(http.MethodGet).Name("ListRentals")
	v1.HandleFunc("/rentals/{id}", h.GetRental).Methods(http.MethodGet).Name("GetRental")
	v1.HandleFunc("/rentals/{id}", h.DeleteRental).Methods(http.MethodDelete).Name("DeleteRental")
	v1.HandleFunc("/rentals/{id}/edit", h.EditRental).Methods(http.MethodPost).Name("EditRental")
	v1.HandleFunc("/rentals/{id}/edit", h.SetRentalFields).Methods(http.MethodPatch).Name("SetRentalFields")
	v1.HandleFunc("/rentals/{id}/save", h.SaveRental).Methods(http.MethodPost).Name("SaveRental")
	v1.HandleFunc("/rentals/{id}/paid/toggle", h.ToggleRentalPaid).Methods(http.MethodPost).Name("ToggleRentalPaid")
	v1.HandleFunc("/rentals/{id}/quote", h.QuoteRental).Methods(http.MethodGet).Name("QuoteRental")
	v1.HandleFunc("/rentals/{id}/agreement", h.RentalAgreement).Methods(http.MethodGet).Name("RentalAgreement")

	v1.HandleFunc("/config", h.ListConfig).Methods(http.MethodGet).Name("ListConfig")
	v1.HandleFunc("/config", h.AddConfig).Methods(http.MethodPut).Name("AddConfig")
	v1.HandleFunc("/config/{key}", h.UpdateConfig).Methods(http.MethodPatch).Name("UpdateConfig")
	v1.HandleFunc("/config/{key}", h.DeleteConfig).Methods(http.MethodDelete).Name("DeleteConfig")

	v1.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet).Name("ListNotifications")
	v1.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost).Name("MarkNotificationRead")
	v1.HandleFunc("/change-events", h.ListChangeEvents).Methods(http.MethodGet).Name("ListChangeEvents")

	v1.HandleFunc("/auth-google/status", h.GoogleAuthStatus).Methods(http.MethodGet).Name("GoogleAuthStatus")
	v1.HandleFunc("/auth-google/url", h.GoogleAuthURL).Methods(http.MethodGet).Name("GoogleAuthURL")

	c := cors.New(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	})

	return alice.New(recoverPanic, requestID, logRequest, c.Handler).Then(router)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
