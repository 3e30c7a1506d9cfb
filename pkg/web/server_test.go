package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"itemwatch/pkg/api"
	"itemwatch/pkg/storage"
	"itemwatch/pkg/watcher"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &Server{
		Store:   store,
		Watcher: &watcher.Watcher{Store: store},
	}, store
}

func TestAPIErrorResponses(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "Unknown API path",
			method:         "GET",
			path:           "/api/items",
			expectedStatus: http.StatusNotFound,
			expectedDetail: "Unknown API path",
		},
		{
			name:           "Invalid product ID",
			method:         "GET",
			path:           "/api/products/abc",
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid product ID",
		},
		{
			name:           "Missing product",
			method:         "GET",
			path:           "/api/products/999",
			expectedStatus: http.StatusNotFound,
			expectedDetail: "Product not found",
		},
		{
			name:           "Unsupported URL on add",
			method:         "POST",
			path:           "/api/products",
			body:           `{"url":"https://example.com/product"}`,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "URL not supported",
		},
		{
			name:           "Invalid JSON on add",
			method:         "POST",
			path:           "/api/products",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid JSON body",
		},
		{
			name:           "Wrong method on history",
			method:         "POST",
			path:           "/api/products/1/history",
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Use GET for history",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *bytes.Reader
			if tt.body != "" {
				body = bytes.NewReader([]byte(tt.body))
			} else {
				body = bytes.NewReader(nil)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rr := httptest.NewRecorder()

			srv.apiHandler(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content type = %q, want application/problem+json", ct)
			}

			var pd api.ProblemDetails
			if err := json.Unmarshal(rr.Body.Bytes(), &pd); err != nil {
				t.Fatalf("invalid problem JSON: %v. Body: %s", err, rr.Body.String())
			}
			if pd.Status != tt.expectedStatus {
				t.Errorf("problem status = %d, want %d", pd.Status, tt.expectedStatus)
			}
			if !strings.Contains(pd.Detail, tt.expectedDetail) {
				t.Errorf("detail = %q, want substring %q", pd.Detail, tt.expectedDetail)
			}
		})
	}
}

func TestListProductsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/products", nil)
	rr := httptest.NewRecorder()
	srv.apiHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	id, err := store.AddProduct(ctx, "https://www.amazon.in/dp/B0TEST", "Test Product", "amazon", 0)
	if err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}
	if err := store.RecordPrice(ctx, id, 999, 1499, true); err != nil {
		t.Fatalf("RecordPrice() error = %v", err)
	}

	// Set a target.
	req := httptest.NewRequest("PUT", "/api/products/1/target", strings.NewReader(`{"target_price":900}`))
	rr := httptest.NewRecorder()
	srv.apiHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("set target status = %d, body %s", rr.Code, rr.Body.String())
	}
	var got storage.TrackedProduct
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.TargetPrice != 900 {
		t.Errorf("target = %v, want 900", got.TargetPrice)
	}

	// History has the seeded record.
	req = httptest.NewRequest("GET", "/api/products/1/history", nil)
	rr = httptest.NewRecorder()
	srv.apiHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("history status = %d", rr.Code)
	}
	var records []storage.PriceRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(records) != 1 || records[0].Price != 999 {
		t.Errorf("history = %+v, want one record at 999", records)
	}

	// Remove is a soft delete: listing empties, history stays reachable.
	req = httptest.NewRequest("DELETE", "/api/products/1", nil)
	rr = httptest.NewRecorder()
	srv.apiHandler(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rr.Code)
	}

	req = httptest.NewRequest("GET", "/api/products", nil)
	rr = httptest.NewRecorder()
	srv.apiHandler(rr, req)
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("listing after delete = %q, want empty array", got)
	}

	req = httptest.NewRequest("GET", "/api/products/1", nil)
	rr = httptest.NewRecorder()
	srv.apiHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("get after delete status = %d, want 200", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Active {
		t.Errorf("product still active after delete")
	}
}
