package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"stockdash/internal/model"
	"stockdash/internal/series"
	"stockdash/internal/store"
)

const defaultDays = 30

// Server exposes the catalog and series endpoints over HTTP.
type Server struct {
	addr   string
	store  store.Store
	reader *series.Reader
	srv    *http.Server
}

// New creates an HTTP server.
func New(addr string, st store.Store, rd *series.Reader) *Server {
	return &Server{addr: addr, store: st, reader: rd}
}

// Handler builds the route table. Exposed separately so tests can drive the
// mux without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /companies", s.handleCompanies)
	mux.HandleFunc("GET /stocks/{symbol}", s.handleSeries)
	mux.HandleFunc("GET /{$}", s.handleHealth)
	return cors(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] http server listening on %s", s.addr)
	return s.srv.Serve(ln)
}

// cors allows any origin; the dashboard UI is served from a different port
// in development.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type companyOut struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	secs, err := s.store.ListSecurities(r.Context())
	if err != nil {
		log.Printf("[WARN] list securities: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list securities")
		return
	}
	out := make([]companyOut, len(secs))
	for i, sec := range secs {
		out[i] = companyOut{Symbol: sec.Symbol, Name: sec.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	days := defaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	refresh := true
	if v := r.URL.Query().Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "refresh must be a boolean")
			return
		}
		refresh = b
	}

	out, err := s.reader.GetSeries(r.Context(), symbol, days, refresh)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUnknownSymbol), errors.Is(err, model.ErrUnregisteredSymbol):
			writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown symbol '%s'", symbol))
		case errors.Is(err, model.ErrUpstreamUnavailable):
			writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to fetch data for %s", symbol))
		default:
			log.Printf("[WARN] series %s: %v", symbol, err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "stockdash backend running",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
