package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vanshika/clientdesk/internal/aggregation"
	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/insights"
	"github.com/vanshika/clientdesk/internal/lifecycle"
	"github.com/vanshika/clientdesk/internal/service"
	"github.com/vanshika/clientdesk/internal/store"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger    *slog.Logger
	clients   *service.ClientService
	engine    *aggregation.Engine
	lifecycle *lifecycle.Orchestrator
	insights  *insights.Service
}

// NewAPIHandlers constructs an APIHandlers instance. The insight service may
// be nil, in which case the insight routes answer 503.
func NewAPIHandlers(
	logger *slog.Logger,
	clients *service.ClientService,
	engine *aggregation.Engine,
	orchestrator *lifecycle.Orchestrator,
	narratives *insights.Service,
) *APIHandlers {
	return &APIHandlers{
		logger:    logger,
		clients:   clients,
		engine:    engine,
		lifecycle: orchestrator,
		insights:  narratives,
	}
}

func (h *APIHandlers) handleClients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createClient(w, r)
	case http.MethodGet:
		h.listClients(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// handleClientResource dispatches /clients/{id}[/{resource}].
func (h *APIHandlers) handleClientResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/clients/"), "/")
	clientID, resource, _ := strings.Cut(rest, "/")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "client ID is required")
		return
	}

	switch resource {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.getClient(w, r, clientID)
		case http.MethodPut:
			h.updateClient(w, r, clientID)
		case http.MethodDelete:
			h.deleteClient(w, r, clientID)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case "view":
		h.readOnly(w, r, func() (any, error) { return h.engine.Aggregate(r.Context(), clientID) })
	case "dashboard":
		h.readOnly(w, r, func() (any, error) { return h.engine.Dashboard(r.Context(), clientID) })
	case "financial-summary":
		h.readOnly(w, r, func() (any, error) { return h.engine.FinancialSummary(r.Context(), clientID) })
	case "risk-indicators":
		switch r.Method {
		case http.MethodGet:
			h.readOnly(w, r, func() (any, error) { return h.engine.RiskIndicators(r.Context(), clientID) })
		case http.MethodPost:
			h.recordRiskIndicator(w, r, clientID)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case "trends":
		switch r.Method {
		case http.MethodGet:
			h.getTrends(w, r, clientID)
		case http.MethodPost:
			h.recordTrendPoint(w, r, clientID)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case "manual-inputs":
		h.saveManualInputs(w, r, clientID)
	case "calculated":
		h.saveCalculated(w, r, clientID)
	case "behavior":
		h.saveBehavior(w, r, clientID)
	case "insights":
		switch r.Method {
		case http.MethodGet:
			h.latestInsight(w, r, clientID)
		case http.MethodPost:
			h.generateInsight(w, r, clientID)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	default:
		writeError(w, http.StatusNotFound, "resource not found")
	}
}

func (h *APIHandlers) readOnly(w http.ResponseWriter, r *http.Request, fetch func() (any, error)) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	data, err := fetch()
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load client data")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *APIHandlers) createClient(w http.ResponseWriter, r *http.Request) {
	var payload service.ClientInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	client, err := h.clients.CreateClient(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to persist client")
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *APIHandlers) listClients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.clients.ListClients(r.Context(), service.ListClientsParams{
		Page:        parseInt(query.Get("page"), 1),
		PageSize:    parseInt(query.Get("pageSize"), 50),
		Search:      query.Get("search"),
		Status:      query.Get("status"),
		RiskProfile: query.Get("riskProfile"),
		SortField:   query.Get("sortField"),
		SortOrder:   query.Get("sortOrder"),
	})
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	items := page.Items
	if items == nil {
		items = []domain.Client{}
	}
	respondJSON(w, http.StatusOK, listClientsResponse{
		Items: items,
		Pagination: paginationResponse{
			Page:       page.Pagination.Page,
			PageSize:   page.Pagination.PageSize,
			TotalItems: page.Pagination.TotalItems,
			TotalPages: page.Pagination.TotalPages,
		},
	})
}

func (h *APIHandlers) getClient(w http.ResponseWriter, r *http.Request, clientID string) {
	client, err := h.clients.GetClient(r.Context(), clientID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (h *APIHandlers) updateClient(w http.ResponseWriter, r *http.Request, clientID string) {
	var payload service.ClientInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.ID != "" && payload.ID != clientID {
		writeError(w, http.StatusBadRequest, "id in body does not match path")
		return
	}
	payload.ID = clientID
	client, err := h.clients.UpdateClient(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// deleteClient runs a complete deletion. A partial failure answers 207 with
// the report; deleting an absent client is a successful no-op.
func (h *APIHandlers) deleteClient(w http.ResponseWriter, r *http.Request, clientID string) {
	report := h.lifecycle.DeleteClientCompletely(r.Context(), clientID)
	status := http.StatusOK
	if !report.Success {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, report)
}

func (h *APIHandlers) getTrends(w http.ResponseWriter, r *http.Request, clientID string) {
	series := strings.TrimSpace(r.URL.Query().Get("type"))
	if series == "" {
		h.readOnly(w, r, func() (any, error) { return h.engine.Trends(r.Context(), clientID) })
		return
	}
	h.readOnly(w, r, func() (any, error) {
		values, err := h.engine.GetTrendDataForType(r.Context(), clientID, series)
		if err != nil {
			return nil, err
		}
		return trendSeriesResponse{ClientID: clientID, Type: series, Values: values}, nil
	})
}

func (h *APIHandlers) recordTrendPoint(w http.ResponseWriter, r *http.Request, clientID string) {
	var payload domain.MonthlyTrendPoint
	if !h.decodeForClient(w, r, &payload, &payload.ClientID, clientID) {
		return
	}
	if err := h.clients.RecordTrendPoint(r.Context(), payload); err != nil {
		h.writeServiceError(w, r, err, "failed to record trend point")
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", ID: clientID})
}

func (h *APIHandlers) recordRiskIndicator(w http.ResponseWriter, r *http.Request, clientID string) {
	var payload domain.RiskIndicator
	if !h.decodeForClient(w, r, &payload, &payload.ClientID, clientID) {
		return
	}
	ind, err := h.clients.RecordRiskIndicator(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to record risk indicator")
		return
	}
	respondJSON(w, http.StatusCreated, ind)
}

func (h *APIHandlers) saveManualInputs(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var payload domain.ManualFinancialInput
	if !h.decodeForClient(w, r, &payload, &payload.ClientID, clientID) {
		return
	}
	if err := h.clients.SaveManualInputs(r.Context(), payload); err != nil {
		h.writeServiceError(w, r, err, "failed to save manual inputs")
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", ID: clientID})
}

func (h *APIHandlers) saveCalculated(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var payload domain.CalculatedFinancialData
	if !h.decodeForClient(w, r, &payload, &payload.ClientID, clientID) {
		return
	}
	if err := h.clients.SaveCalculatedData(r.Context(), payload); err != nil {
		h.writeServiceError(w, r, err, "failed to save calculated data")
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", ID: clientID})
}

func (h *APIHandlers) saveBehavior(w http.ResponseWriter, r *http.Request, clientID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var payload domain.BehavioralData
	if !h.decodeForClient(w, r, &payload, &payload.ClientID, clientID) {
		return
	}
	if err := h.clients.SaveBehavioralData(r.Context(), payload); err != nil {
		h.writeServiceError(w, r, err, "failed to save behavioral data")
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", ID: clientID})
}

func (h *APIHandlers) latestInsight(w http.ResponseWriter, r *http.Request, clientID string) {
	if h.insights == nil {
		writeError(w, http.StatusServiceUnavailable, insights.ErrDisabled.Error())
		return
	}
	if _, err := h.clients.GetClient(r.Context(), clientID); err != nil {
		h.writeServiceError(w, r, err, "failed to load client")
		return
	}
	insight, err := h.insights.Latest(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no insight generated yet")
			return
		}
		h.writeServiceError(w, r, err, "failed to load insight")
		return
	}
	respondJSON(w, http.StatusOK, insight)
}

func (h *APIHandlers) generateInsight(w http.ResponseWriter, r *http.Request, clientID string) {
	if h.insights == nil {
		writeError(w, http.StatusServiceUnavailable, insights.ErrDisabled.Error())
		return
	}
	insight, err := h.insights.Narrate(r.Context(), clientID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to generate insight")
		return
	}
	respondJSON(w, http.StatusCreated, insight)
}

// decodeForClient decodes the body into dst and binds it to the path id.
func (h *APIHandlers) decodeForClient(w http.ResponseWriter, r *http.Request, dst any, idField *string, clientID string) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if *idField != "" && *idField != clientID {
		writeError(w, http.StatusBadRequest, "client_id in body does not match path")
		return false
	}
	*idField = clientID
	return true
}

func (h *APIHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "client not found")
	case errors.Is(err, store.ErrDuplicateID):
		writeError(w, http.StatusConflict, "client already exists")
	case errors.Is(err, aggregation.ErrUnknownSeries):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, insights.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error(msg, "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

type paginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type listClientsResponse struct {
	Items      []domain.Client    `json:"items"`
	Pagination paginationResponse `json:"pagination"`
}

type trendSeriesResponse struct {
	ClientID string                   `json:"client_id"`
	Type     string                   `json:"type"`
	Values   []aggregation.TrendValue `json:"values"`
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
