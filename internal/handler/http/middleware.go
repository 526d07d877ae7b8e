package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	apperrors "github.com/utafrali/communityshop/pkg/errors"
	"github.com/utafrali/communityshop/pkg/httputil"
	"github.com/utafrali/communityshop/pkg/middleware"
)

// maxBodyBytes caps request bodies on write endpoints.
const maxBodyBytes = 1 << 20

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if err := requireJSON(r); err != nil {
				httputil.WriteError(w, r, err, nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func requireJSON(r *http.Request) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return apperrors.UnsupportedMediaType("Content-Type must be application/json")
	}
	return nil
}

// bindJSON checks the content type and decodes the body into dst. Decoder
// failures become INVALID_INPUT errors that name the offending field.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := requireJSON(r); err != nil {
		return err
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidInput(bodyError(err))
	}
	return nil
}

func bodyError(err error) string {
	var tooLarge *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		return "request body too large"
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Sprintf("invalid request body: %s must be %s", typeErr.Field, jsonKind(typeErr.Type))
	case errors.Is(err, io.EOF):
		return "request body is empty"
	default:
		return "request body is not valid JSON"
	}
}

// jsonKind names t the way a JSON client would.
func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

// decodeJSON reads the request body into dst. On failure it writes the
// error and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := bindJSON(w, r, dst); err != nil {
		httputil.WriteError(w, r, err, nil)
		return false
	}
	return true
}

// pathID validates a UUID path parameter. On failure it writes a 400 and
// returns false.
func pathID(w http.ResponseWriter, param string) (string, bool) {
	id, ok := httputil.ParseUUID(w, param)
	if !ok {
		return "", false
	}
	return id.String(), true
}

// callerID returns the authenticated user set by the auth middleware.
func callerID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// notFound answers unknown routes with the JSON error envelope.
func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteErrorCode(w, http.StatusNotFound, "NOT_FOUND", "route "+r.URL.Path+" not found")
}

// methodNotAllowed answers known routes called with an unsupported method.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteErrorCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed on "+r.URL.Path)
}
