// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for constructing the response
// envelope shared by every endpoint.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/log"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	envelope   Envelope
	headers    map[string]string
}

// NewResponse creates a successful response builder with a 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		envelope:   Envelope{Success: true},
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Message(msg string) *ResponseBuilder {
	b.envelope.Message = msg
	return b
}

func (b *ResponseBuilder) Data(data any) *ResponseBuilder {
	b.envelope.Data = data
	return b
}

// Failed marks the envelope as unsuccessful.
func (b *ResponseBuilder) Failed() *ResponseBuilder {
	b.envelope.Success = false
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// At stamps the envelope; Write uses the current time otherwise.
func (b *ResponseBuilder) At(t time.Time) *ResponseBuilder {
	b.envelope.Timestamp = t
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.envelope.Timestamp.IsZero() {
		b.envelope.Timestamp = time.Now().UTC()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.envelope)
}

// ErrorResponse creates a failed response with the given status and message.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Failed().Status(statusCode).Message(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// ValidationError creates a 400 response listing the offending fields.
func ValidationError(fields map[string]string) *ResponseBuilder {
	return BadRequestError("Validation failed").Data(fields)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

var domainRuleErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidPeriod,
	core.ErrInvalidAlertPercentage,
	core.ErrInvalidThresholdType,
	core.ErrInvalidConfiguration,
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrEmptyUsername,
	core.ErrEmptyCategoryName,
}

// ServiceError maps an error returned by a service to a response.
// Unknown errors are logged and reported without detail.
func ServiceError(r *http.Request, err error) *ResponseBuilder {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, core.ErrDuplicate):
		return ConflictError(err.Error())
	}
	for _, target := range domainRuleErrors {
		if errors.Is(err, target) {
			return UnprocessableEntityError(err.Error())
		}
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
	return InternalServerError("Internal server error")
}
