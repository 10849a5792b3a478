package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/rolodex/internal/engine"
	"github.com/MikeSquared-Agency/rolodex/internal/session"
)

// RecordLister is the read side of the record sink, used by the
// interactions endpoint.
type RecordLister interface {
	ListRecent(ctx context.Context, limit int) ([]engine.Record, error)
}

type Server struct {
	router   *chi.Mux
	port     int
	sessions *session.Store
	records  RecordLister
}

func NewServer(port int, sessions *session.Store, records RecordLister) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		sessions: sessions,
		records:  records,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/rolodex/status", s.status)
	router.Get("/api/v1/rolodex/interactions", s.interactions)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"agent":           "rolodex",
		"status":          "ok",
		"active_sessions": s.sessions.Active(),
	})
}

func (s *Server) interactions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	recs, err := s.records.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("list interactions failed", "error", err)
		http.Error(w, `{"error":"storage unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	type item struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Context     string `json:"context"`
		Date        string `json:"date"`
		ContactInfo string `json:"contact_info"`
		Status      string `json:"status"`
	}
	items := make([]item, len(recs))
	for i, rec := range recs {
		items[i] = item{
			ID:          rec.ID,
			Name:        rec.Name,
			Context:     rec.Context,
			Date:        rec.Date,
			ContactInfo: rec.ContactInfo,
			Status:      rec.Status,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"interactions": items,
		"count":        len(items),
	})
}
