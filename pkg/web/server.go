// Package web exposes the tracker over HTTP, with Scalar API docs on the
// root path.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"itemwatch/pkg/api"
	"itemwatch/pkg/models"
	"itemwatch/pkg/storage"
	"itemwatch/pkg/watcher"

	scalargo "github.com/bdpiprava/scalar-go"
)

type Server struct {
	Store   *storage.Store
	Watcher *watcher.Watcher
	SpecDir string // directory holding openapi.yaml, defaults to "./"
}

func (s *Server) ListenAndServe(port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.rootHandler)

	ip := outboundIP()
	if ip != nil {
		fmt.Printf("Local Network URL: http://%s:%s\n", ip.String(), port)
	}
	fmt.Printf("Access URL: http://localhost:%s\n", port)
	fmt.Printf("API Docs: http://localhost:%s/\n", port)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.apiHandler(w, r)
		return
	}

	specDir := s.SpecDir
	if specDir == "" {
		specDir = "./"
	}
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir(specDir),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("itemwatch API"),
		),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func (s *Server) apiHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	// parts[0] = ""
	// parts[1] = "api"
	// parts[2] = "products"
	// parts[3] = {id}
	// parts[4] = "history" | "check" | "target"

	if len(parts) < 3 || parts[2] != "products" {
		api.WriteNotFound(w, "Unknown API path", r.URL.Path)
		return
	}

	if len(parts) == 3 {
		switch r.Method {
		case http.MethodGet:
			s.listProducts(w, r)
		case http.MethodPost:
			s.addProduct(w, r)
		default:
			api.WriteBadRequest(w, "Method not allowed. Use GET or POST.", r.URL.Path)
		}
		return
	}

	id, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		api.WriteBadRequest(w, fmt.Sprintf("Invalid product ID: %s", parts[3]), r.URL.Path)
		return
	}

	if len(parts) == 4 {
		switch r.Method {
		case http.MethodGet:
			s.getProduct(w, r, id)
		case http.MethodDelete:
			s.removeProduct(w, r, id)
		default:
			api.WriteBadRequest(w, "Method not allowed. Use GET or DELETE.", r.URL.Path)
		}
		return
	}

	switch parts[4] {
	case "history":
		if r.Method != http.MethodGet {
			api.WriteBadRequest(w, "Method not allowed. Use GET for history.", r.URL.Path)
			return
		}
		s.history(w, r, id)
	case "check":
		if r.Method != http.MethodPost {
			api.WriteBadRequest(w, "Method not allowed. Use POST to trigger a check.", r.URL.Path)
			return
		}
		s.check(w, r, id)
	case "target":
		if r.Method != http.MethodPut {
			api.WriteBadRequest(w, "Method not allowed. Use PUT to set a target.", r.URL.Path)
			return
		}
		s.setTarget(w, r, id)
	default:
		api.WriteNotFound(w, "Unknown API path", r.URL.Path)
	}
}

type productSummary struct {
	storage.TrackedProduct
	CurrentPrice float64 `json:"current_price,omitempty"`
	LowestPrice  float64 `json:"lowest_price,omitempty"`
	InStock      bool    `json:"in_stock"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.GetActiveProducts(r.Context())
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}

	summaries := []productSummary{}
	for _, p := range products {
		summary := productSummary{TrackedProduct: p, InStock: true}
		latest, err := s.Store.GetLatestPrice(r.Context(), p.ID)
		if err != nil {
			api.WriteInternalServerError(w, err, r.URL.Path)
			return
		}
		if latest != nil {
			summary.CurrentPrice = latest.Price
			summary.InStock = latest.InStock
		}
		if lowest, ok, err := s.Store.GetLowestPrice(r.Context(), p.ID); err == nil && ok {
			summary.LowestPrice = lowest
		}
		summaries = append(summaries, summary)
	}
	api.WriteJSON(w, http.StatusOK, summaries)
}

type addRequest struct {
	URL         string  `json:"url"`
	TargetPrice float64 `json:"target_price"`
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body.", r.URL.Path)
		return
	}
	defer r.Body.Close()

	if req.URL == "" {
		api.WriteBadRequest(w, "Missing url.", r.URL.Path)
		return
	}

	scraper := watcher.ScraperFor(req.URL)
	if scraper == nil {
		api.WriteBadRequest(w, "URL not supported. Track Amazon.in or Flipkart product pages.", r.URL.Path)
		return
	}

	// First scrape validates the page and gives us the title.
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()
	obs, err := scraper.Scrape(ctx, s.Watcher.Renderer, req.URL)
	if err != nil {
		s.writeScrapeError(w, r, err)
		return
	}

	id, err := s.Store.AddProduct(r.Context(), req.URL, obs.Title, obs.Source, req.TargetPrice)
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	if err := s.Store.RecordPrice(r.Context(), id, obs.Price, obs.OriginalPrice, obs.InStock); err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}

	product, err := s.Store.GetProduct(r.Context(), id)
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	api.WriteJSON(w, http.StatusCreated, product)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request, id int64) {
	product, err := s.Store.GetProduct(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		api.WriteNotFound(w, "Product not found", r.URL.Path)
		return
	}
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	api.WriteJSON(w, http.StatusOK, product)
}

func (s *Server) removeProduct(w http.ResponseWriter, r *http.Request, id int64) {
	err := s.Store.RemoveProduct(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		api.WriteNotFound(w, "Product not found", r.URL.Path)
		return
	}
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request, id int64) {
	if _, err := s.Store.GetProduct(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.WriteNotFound(w, "Product not found", r.URL.Path)
		} else {
			api.WriteInternalServerError(w, err, r.URL.Path)
		}
		return
	}

	limit := 50
	if val := r.URL.Query().Get("limit"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := s.Store.GetPriceHistory(r.Context(), id, limit)
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	if records == nil {
		records = []storage.PriceRecord{}
	}
	api.WriteJSON(w, http.StatusOK, records)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request, id int64) {
	product, err := s.Store.GetProduct(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		api.WriteNotFound(w, "Product not found", r.URL.Path)
		return
	}
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()
	obs, events, err := s.Watcher.CheckProduct(ctx, *product)
	if err != nil {
		log.Printf("Check failed for product %d: %v", id, err)
		s.writeScrapeError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"observation": obs,
		"events":      events,
	})
}

type targetRequest struct {
	TargetPrice float64 `json:"target_price"`
}

func (s *Server) setTarget(w http.ResponseWriter, r *http.Request, id int64) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body.", r.URL.Path)
		return
	}
	defer r.Body.Close()

	if req.TargetPrice < 0 {
		api.WriteBadRequest(w, "Target price must not be negative.", r.URL.Path)
		return
	}

	if _, err := s.Store.GetProduct(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.WriteNotFound(w, "Product not found", r.URL.Path)
		} else {
			api.WriteInternalServerError(w, err, r.URL.Path)
		}
		return
	}

	if err := s.Store.SetTargetPrice(r.Context(), id, req.TargetPrice); err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}

	product, err := s.Store.GetProduct(r.Context(), id)
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	api.WriteJSON(w, http.StatusOK, product)
}

func (s *Server) writeScrapeError(w http.ResponseWriter, r *http.Request, err error) {
	var extractErr *models.ExtractionError
	switch {
	case errors.Is(err, models.ErrUnsupportedURL):
		api.WriteBadRequest(w, "URL not supported. Track Amazon.in or Flipkart product pages.", r.URL.Path)
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded"):
		api.WriteGatewayTimeout(w, "Upstream page timed out: "+err.Error(), r.URL.Path)
	case errors.As(err, &extractErr):
		api.WriteError(w, http.StatusBadGateway, "Bad Gateway", err.Error(), r.URL.Path)
	default:
		api.WriteInternalServerError(w, err, r.URL.Path)
	}
}

func outboundIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		addrs, _ := net.InterfaceAddrs()
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					return ipnet.IP
				}
			}
		}
		return nil
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP
}
