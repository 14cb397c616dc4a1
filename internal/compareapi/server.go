package compareapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"collatecheck/internal/collate"
)

// Server serves a comparator backend over HTTP.
type Server struct {
	pool   collate.Pool
	corpus collate.CorpusSource
	log    *slog.Logger
	http   *http.Server
}

// NewServer creates a Server over the given backend capabilities.
func NewServer(pool collate.Pool, corpus collate.CorpusSource, log *slog.Logger) *Server {
	return &Server{pool: pool, corpus: corpus, log: log}
}

// Handler returns the route table, exposed separately so tests can mount
// it on an httptest.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/compare", s.handleCompare)
	mux.HandleFunc("GET /v1/corpus", s.handleCorpus)
	return mux
}

// Start begins serving in a background goroutine and returns immediately.
func (s *Server) Start(_ context.Context, addr string) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.log.Info("comparator service listening", "addr", addr)
	go s.http.ListenAndServe()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// handleCompare evaluates one pair under one ordering. Each request checks
// a session out of the pool so concurrent requests never share a backend
// connection.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "parse request: "+err.Error())
		return
	}
	if req.Ordering == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "ordering is required")
		return
	}

	ctx := r.Context()
	sess, err := s.pool.Session(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	defer sess.Close()

	result, err := sess.Compare(ctx, req.S1, req.S2, req.Ordering)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CompareResponse{Equal: result.Equal, Less: result.Less})
}

// handleCorpus streams the sorted corpus as newline-delimited JSON
// strings. The corpus may hold over a million rows, so it is written as it
// is walked rather than wrapped in one array.
func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	ordering := r.URL.Query().Get("ordering")
	if ordering == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "ordering is required")
		return
	}

	strings, err := s.corpus.SortedCorpus(r.Context(), ordering)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	for _, str := range strings {
		if err := enc.Encode(str); err != nil {
			// Client went away mid-stream; nothing sensible left to send.
			s.log.Debug("corpus stream aborted", "error", err)
			return
		}
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, collate.ErrEmptyCorpus):
		writeError(w, http.StatusConflict, CodeEmptyCorpus, err.Error())
	case errors.Is(err, collate.ErrUnknownOrdering):
		writeError(w, http.StatusNotFound, CodeUnknownOrdering, err.Error())
	default:
		s.log.Error("backend failure", "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Code: code, Error: msg})
}
