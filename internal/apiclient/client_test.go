package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventorycore/internal/apiclient"
)

func TestCallPostsJSONPayloadAndDecodesResponse(t *testing.T) {
	type echo struct {
		Name string `json:"name"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var in echo
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	var out echo
	if err := apiclient.Call(context.Background(), srv.Client(), http.MethodPost, srv.URL, echo{Name: "cement"}, &out); err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.Name != "cement" {
		t.Fatalf("expected echoed payload, got %+v", out)
	}
}

func TestCallOmitsContentTypeWithoutPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			t.Errorf("expected no content type, got %q", ct)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := apiclient.Call(context.Background(), srv.Client(), http.MethodGet, srv.URL, nil, nil); err != nil {
		t.Fatalf("call: %v", err)
	}
}

func TestCallSurfacesServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "duplicate bill number"})
	}))
	defer srv.Close()

	err := apiclient.Call(context.Background(), srv.Client(), http.MethodPost, srv.URL, map[string]string{}, nil)
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "duplicate bill number" {
		t.Fatalf("expected server message, got %q", apiErr.Message)
	}
}

func TestCallFallsBackToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>boom</html>"))
	}))
	defer srv.Close()

	err := apiclient.Call(context.Background(), srv.Client(), http.MethodGet, srv.URL, nil, nil)
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "API call failed" {
		t.Fatalf("expected generic message, got %q", apiErr.Message)
	}
}
