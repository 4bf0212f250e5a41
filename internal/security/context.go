package security

import "context"

// SystemIdentity is used for work that runs without a user session, e.g. scheduled jobs.
const SystemIdentity = "system"

type identityKey struct{}

// WithIdentity stores the caller identity used for notifications and audit records.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the caller identity, SystemIdentity when none was set.
func IdentityFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(identityKey{}).(string); ok && id != "" {
		return id
	}
	return SystemIdentity
}
