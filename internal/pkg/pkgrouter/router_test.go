package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
)

type acceptedResponse struct {
	ID string `json:"id"`
}

func (acceptedResponse) StatusCode() int { return http.StatusAccepted }

func (acceptedResponse) Message() string { return "accepted" }

func (acceptedResponse) Meta() map[string]any { return map[string]any{"total": 1} }

func TestRouterEncodesSuccessEnvelope(t *testing.T) {
	router := NewRouter(&staticGenerator{value: "cid"})
	router.POST("/things", func(ctx context.Context, r *http.Request) (any, error) {
		return acceptedResponse{ID: "abc"}, nil
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var body struct {
		Message string           `json:"message"`
		Data    acceptedResponse `json:"data"`
		Meta    map[string]any   `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "accepted" || body.Data.ID != "abc" || body.Meta["total"] != float64(1) {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if got := rec.Header().Get(HeaderCorrelationID); got != "cid" {
		t.Fatalf("expected correlation id header, got %q", got)
	}
}

func TestRouterMapsStructuredErrors(t *testing.T) {
	router := NewRouter(nil)
	router.GET("/busy", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, pkgerror.NewConflict("an upload is already being processed")
	})
	router.GET("/plain", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, errors.New("boom")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/busy", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRouterRecoversPanics(t *testing.T) {
	router := NewRouter(nil)
	router.GET("/panic", func(ctx context.Context, r *http.Request) (any, error) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRouterExposesValidationReason(t *testing.T) {
	router := NewRouter(nil)
	router.POST("/uploads", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, pkgerror.NewInvalidInput(errors.New("no file selected"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/uploads", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "validation error" || body.Error["reason"] != "no file selected" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRouterNoContent(t *testing.T) {
	router := NewRouter(nil)
	router.DELETE("/records", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, nil
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/records", nil))
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}
}
