package simstub

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gaspersavle/FuzbAISim/internal/simclient"
)

const maxCommandBody = 32 * 1024

// Server exposes the stub table over the simulator's HTTP surface.
type Server struct {
	table  *Table
	logger zerolog.Logger
}

// NewServer wraps a table.
func NewServer(table *Table, logger zerolog.Logger) *Server {
	return &Server{table: table, logger: logger}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/Camera/State", s.handleCameraState)
	r.Post("/Motors/SendCommand", s.handleSendCommand)
	return r
}

func (s *Server) handleCameraState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.table.Telemetry())
}

func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	blue := r.URL.Query().Get("blue") == "true" || r.URL.Query().Get("blue") == "True"

	r.Body = http.MaxBytesReader(w, r.Body, maxCommandBody)
	defer r.Body.Close()
	var batch struct {
		Commands []simclient.MotorCommand `json:"commands"`
	}
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid command payload")
		return
	}

	s.table.Apply(blue, batch.Commands)
	s.logger.Debug().
		Bool("blue", blue).
		Int("commands", len(batch.Commands)).
		Msg("accepted motor commands")
	s.writeJSON(w, http.StatusOK, map[string]int{"accepted": len(batch.Commands)})
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
