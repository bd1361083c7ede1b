// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating HTTP request data.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cashflow/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// decodeError turns a decodeJSON failure into a response.
func decodeError(err error) *ResponseBuilder {
	if errors.Is(err, core.ErrInvalidAmount) {
		return ValidationError(map[string]string{"amount": "must be a positive amount"})
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return ValidationError(map[string]string{typeErr.Field: "has the wrong type"})
	}
	return BadRequestError("Invalid request body: " + err.Error())
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// ParseMonthParams extracts year and month from query parameters, using now
// for the missing ones. Non-numeric values are errors.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return MonthParams{}, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return MonthParams{}, fmt.Errorf("invalid month %q", v)
		}
		params.Month = m
	}

	return params, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(query url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

// queryOptionalID returns nil when the parameter is absent.
func queryOptionalID(query url.Values, name string) (*int64, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid %s %q", name, v)
	}
	return &id, nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: parsedTime}, nil
}

// sanitizeInput removes control characters other than tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
