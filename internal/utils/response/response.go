// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler sends JSON back to the client, and every error has the
// same shape, so API consumers always know what to expect:
//
//	{ "status": "error", "error": "field title is required", "fields": { "title": "is required" } }
package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
// Success responses may return any JSON shape (a movie, a list, ...).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`

	// Fields maps a JSON field name to what is wrong with it.
	// Only set for validation failures.
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data JSON-encoded with the given HTTP status code.
// Headers must be set before WriteHeader; after it they are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator field errors into a Response with one
// sentence per failing field plus a per-field map. Field names are whatever
// the validator reports, the JSON names when the validator was built with
// a json tag name function.
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string
	fields := make(map[string]string, len(errs))

	for _, e := range errs {
		var msg string
		switch e.ActualTag() {
		case "required":
			msg = "is required"
		case "notnull":
			msg = "may not be null"
		case "min":
			switch {
			case e.Kind() != reflect.String:
				msg = fmt.Sprintf("must be greater than or equal to %s", e.Param())
			case e.Param() == "1":
				msg = "may not be blank"
			default:
				msg = fmt.Sprintf("must be at least %s characters long", e.Param())
			}
		case "max":
			if e.Kind() != reflect.String {
				msg = fmt.Sprintf("must be less than or equal to %s", e.Param())
			} else {
				msg = fmt.Sprintf("must be at most %s characters long", e.Param())
			}
		default:
			msg = "is invalid"
		}

		fields[e.Field()] = msg
		errMessages = append(errMessages, fmt.Sprintf("field %s %s", e.Field(), msg))
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
		Fields: fields,
	}
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusNotFound, Response{Status: StatusError, Error: message})
}

// MethodNotAllowed writes a 405 naming the rejected method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, Response{
		Status: StatusError,
		Error:  fmt.Sprintf("the %s method is not supported for this resource", r.Method),
	})
}

// ServerError logs err with the request it happened on and writes a
// generic 500. The cause is never sent to the client.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("uri", r.URL.RequestURI()),
		slog.String("error", err.Error()))

	WriteJSON(w, http.StatusInternalServerError, Response{
		Status: StatusError,
		Error:  "the server encountered a problem and could not process your request",
	})
}

// RateLimitExceeded writes a 429.
func RateLimitExceeded(w http.ResponseWriter) {
	WriteJSON(w, http.StatusTooManyRequests, Response{
		Status: StatusError,
		Error:  "rate limit exceeded",
	})
}
