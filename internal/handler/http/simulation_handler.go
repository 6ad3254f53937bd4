package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/internal/service"
	"github.com/cypherlabdev/house-edge-simulator/pkg/pricer"
	"github.com/cypherlabdev/house-edge-simulator/pkg/simulator"
)

const apiPrefix = "/api/v1/simulation"

// maxBodyBytes bounds configuration and profile payloads
const maxBodyBytes = 1 << 16

// SimulationHandler handles HTTP requests that drive and inspect the simulation
type SimulationHandler struct {
	controller service.Controller
	logger     zerolog.Logger
}

// NewSimulationHandler creates a new simulation HTTP handler
func NewSimulationHandler(controller service.Controller, logger zerolog.Logger) *SimulationHandler {
	return &SimulationHandler{
		controller: controller,
		logger:     logger.With().Str("component", "simulation_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *SimulationHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/simulation/status - Session id, progress and settings
	mux.HandleFunc(apiPrefix+"/status", h.handleStatus)

	// GET|PUT /api/v1/simulation/config - Read or change the run configuration
	mux.HandleFunc(apiPrefix+"/config", h.handleConfig)

	// GET /api/v1/simulation/profiles - List profile parameters
	// PUT /api/v1/simulation/profiles/:profile - Update one profile
	mux.HandleFunc(apiPrefix+"/profiles", h.handleProfiles)
	mux.HandleFunc(apiPrefix+"/profiles/", h.handleProfiles)

	// POST /api/v1/simulation/rounds?count=n - Advance the simulation
	// GET /api/v1/simulation/rounds/:round - Round drill-down
	mux.HandleFunc(apiPrefix+"/rounds", h.handleAdvance)
	mux.HandleFunc(apiPrefix+"/rounds/", h.handleGetRound)

	// POST /api/v1/simulation/reset - Start a new session
	mux.HandleFunc(apiPrefix+"/reset", h.handleReset)

	// GET /api/v1/simulation/agents - Roster
	// GET /api/v1/simulation/agents/:agent_id/wagers - Wager history of one agent
	mux.HandleFunc(apiPrefix+"/agents", h.handleAgents)
	mux.HandleFunc(apiPrefix+"/agents/", h.handleAgentWagers)

	// GET /api/v1/simulation/ledger - Cumulative house ledger
	mux.HandleFunc(apiPrefix+"/ledger", h.handleLedger)

	// GET /api/v1/simulation/calculator?probability=p&stake=s - Odds calculator
	mux.HandleFunc(apiPrefix+"/calculator", h.handleCalculator)
}

// handleStatus handles GET /api/v1/simulation/status
func (h *SimulationHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.jsonResponse(w, http.StatusOK, h.controller.Status(r.Context()))
}

// handleConfig handles GET and PUT /api/v1/simulation/config
func (h *SimulationHandler) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.jsonResponse(w, http.StatusOK, h.controller.Status(r.Context()).Config)

	case http.MethodPut:
		// Fields absent from the body keep their current values
		cfg := h.controller.Status(r.Context()).Config
		if err := decodeBody(w, r, &cfg); err != nil {
			h.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		if err := h.controller.Configure(r.Context(), cfg); err != nil {
			h.serviceError(w, err, "failed to configure simulation")
			return
		}

		h.jsonResponse(w, http.StatusOK, h.controller.Status(r.Context()).Config)

	default:
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleProfiles handles GET /api/v1/simulation/profiles and PUT /api/v1/simulation/profiles/:profile
func (h *SimulationHandler) handleProfiles(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, apiPrefix+"/profiles"), "/")

	if name == "" {
		if r.Method != http.MethodGet {
			h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.jsonResponse(w, http.StatusOK, h.controller.Status(r.Context()).Profiles)
		return
	}

	if r.Method != http.MethodPut {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	profile, err := models.ParseProfile(name)
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	var params models.ProfileConfig
	if err := decodeBody(w, r, &params); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.controller.UpdateProfile(r.Context(), profile, params); err != nil {
		h.serviceError(w, err, "failed to update profile")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
		"params":  params,
	})
}

// handleAdvance handles POST /api/v1/simulation/rounds
func (h *SimulationHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := r.URL.Query().Get("count")
	if raw == "" {
		result, err := h.controller.AdvanceRound(r.Context())
		if err != nil {
			h.serviceError(w, err, "failed to advance round")
			return
		}
		h.jsonResponse(w, http.StatusOK, result)
		return
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "count must be an integer")
		return
	}

	results, err := h.controller.AdvanceRounds(r.Context(), count)
	if err != nil {
		status, message := h.classify(err, "failed to advance rounds")
		h.jsonResponse(w, status, map[string]interface{}{
			"error":            message,
			"completed_rounds": len(results),
		})
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

// handleGetRound handles GET /api/v1/simulation/rounds/:round
func (h *SimulationHandler) handleGetRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Parse path: /api/v1/simulation/rounds/:round
	path := strings.TrimPrefix(r.URL.Path, apiPrefix+"/rounds/")
	round, err := strconv.Atoi(path)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/simulation/rounds/:round")
		return
	}

	record, err := h.controller.Round(r.Context(), round)
	if err != nil {
		h.serviceError(w, err, "failed to retrieve round")
		return
	}

	overrounds := make([]decimal.Decimal, len(record.Events))
	for i, e := range record.Events {
		overrounds[i] = pricer.Overround(e.PayoutOdds).Round(4)
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"round":      record,
		"overrounds": overrounds,
	})
}

// handleReset handles POST /api/v1/simulation/reset
func (h *SimulationHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID, err := h.controller.Reset(r.Context())
	if err != nil {
		h.serviceError(w, err, "failed to reset simulation")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
	})
}

// handleAgents handles GET /api/v1/simulation/agents
func (h *SimulationHandler) handleAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	agents := h.controller.Agents(r.Context())
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":  len(agents),
		"agents": agents,
	})
}

// handleAgentWagers handles GET /api/v1/simulation/agents/:agent_id/wagers
func (h *SimulationHandler) handleAgentWagers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Parse path: /api/v1/simulation/agents/:agent_id/wagers
	path := strings.TrimPrefix(r.URL.Path, apiPrefix+"/agents/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "wagers" {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/simulation/agents/:agent_id/wagers")
		return
	}

	agentID, err := strconv.Atoi(parts[0])
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "agent_id must be an integer")
		return
	}

	wagers, err := h.controller.AgentWagers(r.Context(), agentID)
	if err != nil {
		h.serviceError(w, err, "failed to retrieve wagers")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"agent_id": agentID,
		"count":    len(wagers),
		"wagers":   wagers,
	})
}

// handleLedger handles GET /api/v1/simulation/ledger
func (h *SimulationHandler) handleLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.jsonResponse(w, http.StatusOK, h.controller.Ledger(r.Context()))
}

// CalculatorResponse prices a single outcome at the session's house margin
type CalculatorResponse struct {
	Probability     decimal.Decimal `json:"probability"`
	HouseMargin     decimal.Decimal `json:"house_margin"`
	FairOdd         decimal.Decimal `json:"fair_odd"`
	HouseOdd        decimal.Decimal `json:"house_odd"`
	ExpectedReturn  decimal.Decimal `json:"expected_return"`
	Stake           decimal.Decimal `json:"stake"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
}

// handleCalculator handles GET /api/v1/simulation/calculator?probability=p&stake=s
func (h *SimulationHandler) handleCalculator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	prob, err := decimal.NewFromString(r.URL.Query().Get("probability"))
	if err != nil || !prob.IsPositive() || prob.GreaterThan(decimal.NewFromInt(1)) {
		h.errorResponse(w, http.StatusBadRequest, "probability must be in (0, 1]")
		return
	}

	stake := decimal.NewFromInt(1)
	if raw := r.URL.Query().Get("stake"); raw != "" {
		stake, err = decimal.NewFromString(raw)
		if err != nil || !stake.IsPositive() {
			h.errorResponse(w, http.StatusBadRequest, "stake must be positive")
			return
		}
	}

	margin := h.controller.Status(r.Context()).Config.HouseMargin
	p, err := pricer.New(margin)
	if err != nil {
		h.serviceError(w, err, "failed to build pricer")
		return
	}

	houseOdd := p.PriceOutcome(prob)
	h.jsonResponse(w, http.StatusOK, CalculatorResponse{
		Probability:     prob,
		HouseMargin:     margin,
		FairOdd:         pricer.FairOdd(prob).Round(pricer.OddScale),
		HouseOdd:        houseOdd,
		ExpectedReturn:  pricer.ExpectedReturn(prob, houseOdd).Round(4),
		Stake:           stake,
		PotentialPayout: pricer.PotentialPayout(stake, houseOdd).Round(simulator.MoneyScale),
	})
}

// decodeBody decodes a bounded JSON request body, rejecting unknown fields
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// classify maps service errors to an HTTP status and client message
func (h *SimulationHandler) classify(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, simulator.ErrInvalidConfig),
		errors.Is(err, models.ErrInvalidProfile),
		errors.Is(err, service.ErrInvalidRoundCount),
		errors.Is(err, pricer.ErrInvalidMargin):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, simulator.ErrRoundNotFound),
		errors.Is(err, simulator.ErrAgentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, simulator.ErrConfigLocked):
		return http.StatusConflict, err.Error()
	default:
		h.logger.Error().Err(err).Msg(fallback)
		return http.StatusInternalServerError, fallback
	}
}

// serviceError writes the JSON error matching a service error
func (h *SimulationHandler) serviceError(w http.ResponseWriter, err error, fallback string) {
	status, message := h.classify(err, fallback)
	h.errorResponse(w, status, message)
}

// jsonResponse writes a JSON response
func (h *SimulationHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *SimulationHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
