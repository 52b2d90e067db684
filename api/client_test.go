// ABOUTME: Tests for HTTP client error classification
// ABOUTME: Verifies 404 mapping, status capture, and transport failure wrapping
package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func asFetchError(err error, target **FetchError) bool {
	return errors.As(err, target)
}

func TestDoMapsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	err := client.get(context.Background(), "/packs/9999", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", fetchErr.Status)
	}
}

func TestDoTransportFailure(t *testing.T) {
	// Point at a closed server.
	client := NewClientWithHTTP("http://127.0.0.1:1", nil)

	err := client.get(context.Background(), "/users", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fetchErr.Status != 0 {
		t.Errorf("transport failures carry no status, got %d", fetchErr.Status)
	}
}

func TestDoDecodesBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("Accept = %q, want application/json", accept)
		}
		_, _ = w.Write([]byte(`{"id": 1, "name": "Road Pack"}`))
	}))

	pack, err := client.GetPack(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetPack failed: %v", err)
	}
	if pack.ID != 1 || pack.Name != "Road Pack" {
		t.Errorf("unexpected pack: %+v", pack)
	}
}
