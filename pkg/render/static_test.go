package render

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"itemwatch/pkg/models"
)

func TestStaticFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Widget</h1></body></html>`)
	}))
	defer ts.Close()

	s := NewStatic()
	html, err := s.Fetch(context.Background(), Request{URL: ts.URL + "/p/1"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(html, "<h1>Widget</h1>") {
		t.Errorf("unexpected HTML: %q", html)
	}
}

func TestStaticFetchRetriesOnce(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `<html><body>ok</body></html>`)
	}))
	defer ts.Close()

	s := NewStatic()
	s.RetryPause = 10 * time.Millisecond

	html, err := s.Fetch(context.Background(), Request{URL: ts.URL})
	if err != nil {
		t.Fatalf("Fetch failed after retry: %v", err)
	}
	if !strings.Contains(html, "ok") {
		t.Errorf("unexpected HTML: %q", html)
	}
	if hits != 2 {
		t.Errorf("expected 2 attempts, got %d", hits)
	}
}

func TestStaticFetchNavigationError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	s := NewStatic()
	s.RetryPause = 10 * time.Millisecond

	_, err := s.Fetch(context.Background(), Request{URL: ts.URL})
	if err == nil {
		t.Fatal("expected error for a page that never loads")
	}
	var navErr *models.NavigationError
	if !errors.As(err, &navErr) {
		t.Errorf("expected *models.NavigationError, got %T: %v", err, err)
	}
}
