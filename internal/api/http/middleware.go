package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"rental-mngt-admin/internal/config"
	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/security"
)

const requestIDHeader = "X-Request-ID"

type tokenKey struct{}

func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// tokenFrom returns the caller's bearer token, forwarded as is to the rental-mngt API.
func tokenFrom(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey{}).(string)
	return token
}

// requestID tags the request context with the incoming X-Request-ID or a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.HTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "Panic in handler", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				w.Header().Set("Connection", "close")
				writeMessage(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate runs after route matching. Protected routes need a bearer
// token signed with the shared secret and not yet expired; the caller
// identity goes into the context.
func authenticate(inspector security.TokenInspector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := ""
			if route := mux.CurrentRoute(r); route != nil {
				name = route.GetName()
			}
			if config.GetSecurityLevel(name) == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}

			token, err := security.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, err.Error())
				return
			}
			claims, err := inspector.Inspect(token)
			switch {
			case errors.Is(err, security.ErrExpiredToken):
				writeMessage(w, http.StatusUnauthorized, "jwt expired")
				return
			case err != nil:
				writeMessage(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := withToken(r.Context(), token)
			if identity := claims.Identity(); identity != "" {
				ctx = security.WithIdentity(ctx, identity)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// checkRecordID rejects machine and rental ids that are not plain identifiers
// before they reach the API client, the archive or the change log.
func checkRecordID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := mux.Vars(r)["id"]; ok && !domain.ValidID(id) {
			writeMessage(w, http.StatusBadRequest, "invalid id")
			return
		}
		next.ServeHTTP(w, r)
	})
}
