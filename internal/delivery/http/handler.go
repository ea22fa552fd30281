package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"matchmaker/internal/entity"
	"matchmaker/internal/repository"
	"matchmaker/internal/usecase"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Warn("write response")
	}
}

// decode reads the JSON body into dst and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrInvalidGender),
		errors.Is(err, usecase.ErrInvalidMessage),
		errors.Is(err, usecase.ErrSelfAction),
		errors.Is(err, usecase.ErrNoPendingLike):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidRefreshToken),
		errors.Is(err, usecase.ErrExpiredRefreshToken),
		errors.Is(err, usecase.ErrRevokedRefreshToken):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden),
		errors.Is(err, usecase.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrMatchNotFound),
		errors.Is(err, repository.ErrMessageNotFound),
		errors.Is(err, repository.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrEmailAlreadyTaken),
		errors.Is(err, usecase.ErrAlreadyMatched):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps err onto a status code. Unmapped errors are logged and
// reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()

	entry := log.WithError(err).WithFields(log.Fields{
		"requestId": middleware.GetReqID(r.Context()),
		"path":      r.URL.Path,
		"status":    status,
	})
	if status == http.StatusInternalServerError {
		message = "internal server error"
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	writeJSON(w, status, Response{Message: message})
}

func claimsFrom(r *http.Request) *entity.TokenClaims {
	claims, _ := r.Context().Value(UserContextKey).(*entity.TokenClaims)
	return claims
}

// HealthHandler reports 503 when ping fails.
func HealthHandler(ping func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r); err != nil {
				log.WithError(err).Warn("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, Response{Message: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, Response{Message: "ok"})
	}
}
