package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/mirrordex/internal/domain"
)

func TestExecute_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		if r.URL.Path != "/alfresco/_search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		_, _ = w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	data, err := c.Execute(context.Background(), http.MethodPost, "/alfresco/_search", []byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"hits":{"hits":[]}}` {
		t.Errorf("body = %q", data)
	}
}

func TestExecute_BasicAuthOnlyWhenConfigured(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, sawAuth = r.BasicAuth()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.Execute(context.Background(), http.MethodGet, "/", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawAuth {
		t.Error("unexpected basic auth header without credentials")
	}

	c = New(Config{BaseURL: srv.URL, Username: "admin", Password: "admin"})
	if _, err := c.Execute(context.Background(), http.MethodGet, "/", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawAuth {
		t.Error("expected basic auth header with credentials")
	}
}

func TestExecute_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Execute(context.Background(), http.MethodGet, "/alfresco/_doc/x", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExecute_TransientOnConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Execute(context.Background(), http.MethodGet, "/", nil)
	if !errors.Is(err, domain.ErrTransientUpstream) {
		t.Fatalf("expected ErrTransientUpstream, got %v", err)
	}
}
