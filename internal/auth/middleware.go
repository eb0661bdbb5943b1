package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/etendy/backend/internal/middlewares"
	"github.com/etendy/backend/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// AccessTokenCookie is the cookie the web client keeps the access token in
const AccessTokenCookie = "access_token"

// TokenValidator validates access tokens
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*Claims, error)
}

// Denylist keeps the ids of signed out tokens
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SuperAdminChecker reports whether a user is a super admin
type SuperAdminChecker interface {
	IsSuperAdmin(ctx context.Context, userID string) (bool, error)
}

// session is the verified token of the current request
type session struct {
	identity  models.Identity
	tokenID   string
	expiresAt time.Time
}

// AuthMiddleware validates the JWT access token and stores the identity in the request context
func AuthMiddleware(validator TokenValidator, denylist Denylist, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				logger.Error("failed to check token denylist",
					zap.String("request_id", middlewares.GetRequestID(r.Context())),
					zap.Error(err),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if revoked {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), models.Identity{ID: claims.Subject, Email: claims.Email}, claims.ID, claims.ExpiresAt.Time)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware lets only super admins through. It must run after AuthMiddleware.
func RoleMiddleware(checker SuperAdminChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			isSuperAdmin, err := checker.IsSuperAdmin(r.Context(), identity.ID)
			if err != nil {
				logger.Error("failed to check role",
					zap.String("request_id", middlewares.GetRequestID(r.Context())),
					zap.String("user_id", identity.ID),
					zap.Error(err),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !isSuperAdmin {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a context carrying a verified identity
func WithIdentity(ctx context.Context, identity models.Identity, tokenID string, expiresAt time.Time) context.Context {
	return context.WithValue(ctx, sessionKey, &session{identity: identity, tokenID: tokenID, expiresAt: expiresAt})
}

// GetIdentity retrieves the verified identity from context
func GetIdentity(ctx context.Context) (*models.Identity, bool) {
	s, ok := ctx.Value(sessionKey).(*session)
	if !ok {
		return nil, false
	}
	identity := s.identity
	return &identity, true
}

// extractToken reads the token from the Authorization header, then from the cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
