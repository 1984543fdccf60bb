package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"vebetterdao/services/indexd/models"
)

const maxPageSize = 200

// Server serves the indexed protocol history over HTTP.
type Server struct {
	db     *gorm.DB
	router http.Handler
}

// New wires the query API routes.
func New(db *gorm.DB) *Server {
	s := &Server{db: db}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/events", s.handleEvents)
	r.Get("/rounds", s.handleRounds)
	r.Get("/rounds/{id}/votes", s.handleRoundVotes)
	r.Get("/claims", s.handleClaims)

	s.router = r
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler { return s.router }

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pageSize(r *http.Request) int {
	size, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || size <= 0 || size > maxPageSize {
		return 50
	}
	return size
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	query := s.db.Order("received_at desc").Limit(pageSize(r))
	if eventType := r.URL.Query().Get("type"); eventType != "" {
		query = query.Where("type = ?", eventType)
	}
	var records []models.EventRecord
	if err := query.Find(&records).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	query := s.db.Order("round_id desc").Limit(pageSize(r))
	if state := r.URL.Query().Get("state"); state != "" {
		query = query.Where("state = ?", state)
	}
	var rounds []models.Round
	if err := query.Find(&rounds).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

func (s *Server) handleRoundVotes(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid round id"})
		return
	}
	var votes []models.Vote
	if err := s.db.Where("round_id = ?", roundID).Order("created_at asc").Find(&votes).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	query := s.db.Order("created_at desc").Limit(pageSize(r))
	if account := r.URL.Query().Get("account"); account != "" {
		query = query.Where("account = ?", account)
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var claims []models.Claim
	if err := query.Find(&claims).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, claims)
}
