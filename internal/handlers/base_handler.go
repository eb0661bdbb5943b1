package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/etendy/backend/internal/auth"
	"github.com/etendy/backend/internal/middlewares"
	"github.com/etendy/backend/internal/models"
	"github.com/etendy/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error to its HTTP status and sends it.
// Internal errors are logged and answered with a generic message.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("request_id", middlewares.GetRequestID(r.Context())),
		zap.Int("status", status),
		zap.Error(err),
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error(message, fields...)
		h.RespondError(w, status, "internal server error")
		return
	}

	h.Logger.Debug(message, fields...)
	h.RespondError(w, status, err.Error())
}

// decodeJSON decodes the request body into dst and validates its struct tags
func (h *BaseHandler) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return fmt.Errorf("field %s failed on the '%s' rule", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// identity returns the caller verified by the auth middleware, answering 401 when there is none
func (h *BaseHandler) identity(w http.ResponseWriter, r *http.Request) (*models.Identity, bool) {
	identity, ok := auth.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return identity, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrSelfActionDenied), errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
