package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Data: data})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Describe converts err into the status, message and field errors a client
// should see. Unclassified errors become a generic 500.
func Describe(err error) (int, string, map[string]string) {
	e, ok := apperr.As(err)
	if !ok {
		return http.StatusInternalServerError, "Internal Server Error", nil
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Kind.HTTPStatus())
	}
	return e.Kind.HTTPStatus(), msg, e.Fields
}

// FromError writes err as a JSON error envelope. Internal and provider
// failures are logged with the request logger; client errors are not.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, fields := Describe(err)
	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	body := Envelope{Status: status, Message: msg}
	if len(fields) > 0 {
		body.Errors = fields
	}
	write(w, status, body)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
