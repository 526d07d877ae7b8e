package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/communityshop/pkg/errors"
	"github.com/utafrali/communityshop/pkg/logger"
	"github.com/utafrali/communityshop/pkg/validator"
)

// Response is the JSON envelope of every API answer.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Details   []string          `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with status. Encoding errors are dropped because the
// header is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrorCode writes an error envelope without going through error mapping.
func WriteErrorCode(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Response{Error: &ErrorResponse{Code: code, Message: message}})
}

// sentinelErrors maps bare sentinel errors to public codes. An empty message
// exposes err.Error().
var sentinelErrors = []struct {
	err     error
	code    string
	message string
}{
	{apperrors.ErrNotFound, "NOT_FOUND", "resource not found"},
	{apperrors.ErrDuplicateReview, "DUPLICATE_REVIEW", "product already reviewed by this user"},
	{apperrors.ErrAlreadyExists, "ALREADY_EXISTS", "resource already exists"},
	{apperrors.ErrConflict, "CONFLICT", "request conflicts with current state"},
	{apperrors.ErrValidation, "VALIDATION_ERROR", ""},
	{apperrors.ErrInvalidInput, "INVALID_INPUT", ""},
	{apperrors.ErrInvalidRating, "INVALID_RATING", ""},
	{apperrors.ErrMissingField, "MISSING_FIELD", ""},
	{apperrors.ErrUnauthorized, "UNAUTHORIZED", "authentication required"},
	{apperrors.ErrForbidden, "FORBIDDEN", "not authorized to perform this action"},
}

// toAppError converts err into the AppError that will be rendered. Unknown
// errors become an opaque INTERNAL_ERROR.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return valErr.AppError()
	}
	for _, s := range sentinelErrors {
		if errors.Is(err, s.err) {
			msg := s.message
			if msg == "" {
				msg = err.Error()
			}
			return &apperrors.AppError{Code: s.code, Message: msg, Status: apperrors.HTTPStatus(err), Err: err}
		}
	}
	return apperrors.Internal(err)
}

// WriteError renders err as an error envelope tagged with the request's
// correlation ID. 5xx errors are logged with the request-scoped logger, or
// fallback when no RequestLogger middleware ran.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	appErr := toAppError(err)

	if appErr.Status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, appErr.Status, Response{Error: &ErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Fields:    appErr.Fields,
		Details:   appErr.Details(),
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

// ParseUUID parses a path parameter. On failure it writes 400
// INVALID_PARAMETER and returns false.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteErrorCode(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid ID format: "+param)
		return uuid.Nil, false
	}
	return id, true
}
