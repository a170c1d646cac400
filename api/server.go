package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wricardo/auto-driving-car/sim/config"
	"github.com/wricardo/auto-driving-car/sim/engine"
	"github.com/wricardo/auto-driving-car/sim/service"
	"github.com/wricardo/auto-driving-car/transport/websocket"
)

// Largest request body accepted by any handler
const maxBodyBytes = 1 << 20

// Server represents the HTTP API server
type Server struct {
	service service.SimulationService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case runs are
// never broadcast.
func NewServer(simService service.SimulationService, hub *websocket.Hub) *Server {
	s := &Server{
		service: simService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Plain-text form endpoints
	s.router.HandleFunc("/simulate", s.handleSimulateForm(service.ModeSingle)).Methods("POST")
	s.router.HandleFunc("/simulate_part1", s.handleSimulateForm(service.ModeSingle)).Methods("POST")
	s.router.HandleFunc("/simulate_part2", s.handleSimulateForm(service.ModeMulti)).Methods("POST")

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/simulate", s.handleSimulate).Methods("POST")

	// Scenario library
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios", s.handleCreateScenario).Methods("POST")
	api.HandleFunc("/scenarios/{name}", s.handleGetScenario).Methods("GET")
	api.HandleFunc("/scenarios/{name}/run", s.handleRunScenario).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Router exposes the underlying router so callers can mount extra routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, text)
}

// limitBody caps the request body at maxBodyBytes
func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
}

// bodyErrorStatus distinguishes oversized bodies from malformed ones
func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, config.ErrInvalidScenario):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) simulate(r *http.Request, mode, raw string) (*service.RunResult, error) {
	switch mode {
	case service.ModeSingle:
		return s.service.SimulateSingle(r.Context(), raw)
	case service.ModeMulti:
		return s.service.SimulateMulti(r.Context(), raw)
	default:
		return nil, &service.InputError{Err: fmt.Errorf("mode must be %q or %q, got %q", service.ModeSingle, service.ModeMulti, mode)}
	}
}

// Simulation Handlers

// handleSimulateForm answers the form endpoints with the bare text result
func (s *Server) handleSimulateForm(mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limitBody(w, r)
		if err := r.ParseForm(); err != nil {
			status := bodyErrorStatus(err)
			if status == http.StatusRequestEntityTooLarge {
				respondText(w, status, "Error: Input too large.")
			} else {
				respondText(w, status, "Error: Invalid form data.")
			}
			return
		}

		raw := r.FormValue("input")
		if _, ok := r.Form["input"]; !ok {
			respondText(w, http.StatusBadRequest, "Error: Missing form field 'input'.")
			return
		}

		result, err := s.simulate(r, mode, raw)
		if err != nil {
			respondText(w, errorStatus(err), "Error: "+err.Error())
			return
		}

		logRun(result)
		respondText(w, http.StatusOK, result.Output)
	}
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode  string `json:"mode"`
		Input string `json:"input"`
	}

	limitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, bodyErrorStatus(err), "Invalid request body")
		return
	}

	result, err := s.simulate(r, req.Mode, req.Input)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	logRun(result)
	s.broadcast(r, result)
	respondJSON(w, http.StatusOK, result)
}

// Scenario Handlers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.service.ListScenarios(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if scenarios == nil {
		scenarios = []*service.ScenarioInfo{}
	}

	respondJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	sc, err := s.service.LoadScenario(r.Context(), name)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, sc)
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var sc engine.Scenario
	limitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		respondError(w, bodyErrorStatus(err), "Invalid request body")
		return
	}

	// The identifier defaults to the scenario name
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		id = sc.Name
	}
	if id == "" {
		respondError(w, http.StatusBadRequest, "Scenario name is required")
		return
	}

	if err := s.service.SaveScenario(r.Context(), id, &sc); err != nil {
		respondError(w, errorStatus(err), fmt.Sprintf("Failed to save scenario: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Scenario saved successfully",
		"scenario_id": id,
	})
}

func (s *Server) handleRunScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	result, err := s.service.RunScenario(r.Context(), name)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	logRun(result)
	s.broadcast(r, result)
	respondJSON(w, http.StatusOK, result)
}

// broadcast pushes result to the WebSocket channel named in the query
func (s *Server) broadcast(r *http.Request, result *service.RunResult) {
	channel := r.URL.Query().Get("channel")
	if s.hub == nil || channel == "" {
		return
	}
	s.hub.BroadcastRun(channel, result)
}

// logRun writes one compact line per simulation
func logRun(result *service.RunResult) {
	outcome := strings.ReplaceAll(result.Output, "\n", "|")
	scenario := result.Scenario
	if scenario == "" {
		scenario = "-"
	}
	log.Printf("[SIM] mode=%s scenario=%s cars=%d steps=%d/%d result=%q",
		result.Mode, scenario, len(result.Cars), result.StepsExecuted, result.MaxSteps, outcome)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live feed disabled", http.StatusServiceUnavailable)
		return
	}

	channel := r.URL.Query().Get("channel")
	if channel == "" {
		http.Error(w, "channel parameter required", http.StatusBadRequest)
		return
	}

	s.hub.ServeWS(w, r, channel)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
