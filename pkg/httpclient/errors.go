package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/communityshop/pkg/errors"
)

// errorEnvelope matches the body written by httputil.WriteError.
type errorEnvelope struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// ParseResponseError drains and closes a non-2xx response and converts it to
// an error. Structured bodies become *apperrors.AppError values that keep the
// remote code, message and field violations.
func ParseResponseError(resp *http.Response, target string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", target, resp.StatusCode, err)
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) != nil || env.Error == nil {
		return fmt.Errorf("%s returned status %d: %s", target, resp.StatusCode, string(body))
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s server error (%d/%s): %s", target, resp.StatusCode, env.Error.Code, env.Error.Message)
	}

	return &apperrors.AppError{
		Code:    env.Error.Code,
		Message: env.Error.Message,
		Fields:  env.Error.Fields,
		Status:  resp.StatusCode,
		Err:     sentinelFor(resp.StatusCode, env.Error.Code),
	}
}

// sentinelFor picks the apperrors sentinel matching a remote failure so
// callers can branch with errors.Is.
func sentinelFor(status int, code string) error {
	switch status {
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusConflict:
		if code == "DUPLICATE_REVIEW" {
			return apperrors.ErrDuplicateReview
		}
		return apperrors.ErrAlreadyExists
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusBadRequest:
		if code == "VALIDATION_ERROR" {
			return apperrors.ErrValidation
		}
		return apperrors.ErrInvalidInput
	default:
		return nil
	}
}
