package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/priyadarshini/finadvisor/internal/analytics"
	"github.com/priyadarshini/finadvisor/internal/domain"
	"github.com/priyadarshini/finadvisor/internal/ingest"
	"github.com/priyadarshini/finadvisor/internal/recommend"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	engine   *recommend.Engine
	tracker  *analytics.Tracker
	pipeline *ingest.Pipeline
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, engine *recommend.Engine, tracker *analytics.Tracker, pipeline *ingest.Pipeline) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		engine:   engine,
		tracker:  tracker,
		pipeline: pipeline,
	}
}

type preferencesPayload struct {
	CreditScore  *int     `json:"creditScore,omitempty"`
	Income       *float64 `json:"income,omitempty"`
	BudgetMin    *float64 `json:"budgetMin,omitempty"`
	BudgetMax    *float64 `json:"budgetMax,omitempty"`
	RiskAppetite *int     `json:"riskAppetite,omitempty"`
}

type recommendationsRequest struct {
	UserID      string              `json:"userId,omitempty"`
	ProductType string              `json:"productType"`
	Preferences *preferencesPayload `json:"preferences,omitempty"`
	Limit       int                 `json:"limit,omitempty"`
}

type recommendationsResponse struct {
	Success         bool                   `json:"success"`
	Recommendations []domain.ScoredProduct `json:"recommendations"`
}

func (h *APIHandlers) getRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductType == "" {
		writeError(w, http.StatusBadRequest, "productType is required")
		return
	}

	prefs := recommend.Preferences{}
	switch {
	case req.Preferences != nil:
		prefs = recommend.Preferences{
			CreditScore:  req.Preferences.CreditScore,
			Income:       req.Preferences.Income,
			BudgetMin:    req.Preferences.BudgetMin,
			BudgetMax:    req.Preferences.BudgetMax,
			RiskAppetite: req.Preferences.RiskAppetite,
		}
	case req.UserID != "":
		// Fall back to the stored profile; a user without one simply gets
		// unpersonalized ranking.
		profile, err := h.tracker.PreferenceFor(r.Context(), req.UserID)
		if err == nil {
			prefs = recommend.PreferencesFromProfile(profile)
		} else if !errors.Is(err, domain.ErrNotFound) {
			h.respondError(w, err, "load preferences")
			return
		}
	}

	recs, err := h.engine.Recommend(r.Context(), prefs, req.ProductType, req.Limit)
	if err != nil {
		h.respondError(w, err, "compute recommendations")
		return
	}
	if recs == nil {
		recs = []domain.ScoredProduct{}
	}
	respondJSON(w, http.StatusOK, recommendationsResponse{Success: true, Recommendations: recs})
}

type compareRequest struct {
	ProductIDs []string `json:"productIds"`
}

type compareResponse struct {
	Success    bool                     `json:"success"`
	Comparison []domain.ComparisonEntry `json:"comparison"`
}

func (h *APIHandlers) compareProducts(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entries, err := h.engine.Compare(r.Context(), req.ProductIDs)
	if err != nil {
		h.respondError(w, err, "compare products")
		return
	}
	if entries == nil {
		entries = []domain.ComparisonEntry{}
	}
	respondJSON(w, http.StatusOK, compareResponse{Success: true, Comparison: entries})
}

type loopholesResponse struct {
	Success  bool                    `json:"success"`
	Policy   string                  `json:"policy"`
	Provider string                  `json:"provider"`
	Analysis domain.LoopholeAnalysis `json:"loopholeAnalysis"`
}

func (h *APIHandlers) policyLoopholes(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "productID")

	policy, analysis, err := h.engine.PolicyLoopholes(r.Context(), policyID)
	if err != nil {
		h.respondError(w, err, "analyze policy")
		return
	}
	respondJSON(w, http.StatusOK, loopholesResponse{
		Success:  true,
		Policy:   policy.Name,
		Provider: policy.Provider,
		Analysis: analysis,
	})
}

type sourceErrorPayload struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

type refreshResponse struct {
	UpdatedCount int                  `json:"updatedCount"`
	SourceErrors []sourceErrorPayload `json:"sourceErrors"`
	RecordErrors int                  `json:"recordErrors"`
}

func (h *APIHandlers) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	summary, err := h.pipeline.Refresh(r.Context())
	if err != nil {
		h.respondError(w, err, "refresh catalog")
		return
	}

	resp := refreshResponse{
		UpdatedCount: summary.Updated,
		SourceErrors: make([]sourceErrorPayload, 0, len(summary.SourceErrors)),
		RecordErrors: len(summary.RecordErrors),
	}
	for _, se := range summary.SourceErrors {
		resp.SourceErrors = append(resp.SourceErrors, sourceErrorPayload{Source: se.Source, Error: se.Err.Error()})
	}
	respondJSON(w, http.StatusOK, resp)
}

type trackRequest struct {
	UserID string               `json:"userId"`
	Action string               `json:"action"`
	Data   analytics.ActionData `json:"data"`
}

type trackResponse struct {
	Success  bool   `json:"success"`
	RecordID string `json:"recordId"`
}

func (h *APIHandlers) trackAction(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	recordID, err := h.tracker.TrackAction(r.Context(), req.UserID, req.Action, req.Data)
	if err != nil {
		h.respondError(w, err, "track action")
		return
	}
	respondJSON(w, http.StatusOK, trackResponse{Success: true, RecordID: recordID})
}

func (h *APIHandlers) updatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var upd domain.PreferenceUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	if err := h.tracker.UpdateUserPreferences(r.Context(), userID, upd); err != nil {
		h.respondError(w, err, "update preferences")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *APIHandlers) getPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	pref, err := h.tracker.PreferenceFor(r.Context(), userID)
	if err != nil {
		h.respondError(w, err, "fetch preferences")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "preferences": pref})
}

type popularResponse struct {
	Success  bool                       `json:"success"`
	Products []domain.ProductPopularity `json:"products"`
}

func (h *APIHandlers) popularProducts(w http.ResponseWriter, r *http.Request) {
	productType := r.URL.Query().Get("type")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	products, err := h.tracker.PopularProducts(r.Context(), productType, limit)
	if err != nil {
		h.respondError(w, err, "fetch popular products")
		return
	}
	if products == nil {
		products = []domain.ProductPopularity{}
	}
	respondJSON(w, http.StatusOK, popularResponse{Success: true, Products: products})
}

func (h *APIHandlers) syncPopularity(w http.ResponseWriter, r *http.Request) {
	productType := r.URL.Query().Get("type")

	updated, err := h.tracker.SyncPopularity(r.Context(), productType)
	if err != nil {
		h.respondError(w, err, "sync popularity")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "updated": updated})
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func (h *APIHandlers) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "error": message})
}
