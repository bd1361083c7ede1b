package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cashflow/internal/core"
)

func TestResponseBuilder_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	NewResponse().
		Status(http.StatusCreated).
		Message("done").
		Data(map[string]int{"id": 1}).
		Header("X-Test", "yes").
		At(at).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Test") != "yes" {
		t.Error("custom header missing")
	}

	want := `{"success":true,"message":"done","data":{"id":1},"timestamp":"2024-01-02T03:04:05Z"}`
	var got, expected any
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	_ = json.Unmarshal([]byte(want), &expected)
	if fmt.Sprint(got) != fmt.Sprint(expected) {
		t.Errorf("Body = %s, want %s", w.Body.String(), want)
	}
}

func TestResponseBuilder_NullData(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Message("deleted").Write(w)

	var env map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if v, ok := env["data"]; !ok || v != nil {
		t.Errorf("data = %v (present=%v), want explicit null", v, ok)
	}
	if _, ok := env["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("threshold 3: %w", core.ErrNotFound), http.StatusNotFound},
		{"duplicate", fmt.Errorf("wrap: %w", core.ErrDuplicate), http.StatusConflict},
		{"bad period", core.ErrInvalidPeriod, http.StatusUnprocessableEntity},
		{"bad percentage", core.ErrInvalidAlertPercentage, http.StatusUnprocessableEntity},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/x", nil)
			ServiceError(r, tt.err).Write(w)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var env Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatal(err)
			}
			if env.Success {
				t.Error("success should be false")
			}
			if tt.want == http.StatusInternalServerError && env.Message != "Internal server error" {
				t.Errorf("500 leaked detail: %q", env.Message)
			}
		})
	}
}
