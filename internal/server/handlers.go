package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeref/internal/engine"
	"github.com/verte-zerg/typeref/internal/generator"
	"github.com/verte-zerg/typeref/internal/history"
	"github.com/verte-zerg/typeref/internal/model"
	"github.com/verte-zerg/typeref/internal/stats"
)

const maxBodyBytes = 1 << 20

// --- Request/Response types ---

// sessionRequest overrides the stored defaults; nil fields keep them.
type sessionRequest struct {
	Mode        *model.Mode       `json:"mode,omitempty"`
	Duration    *int              `json:"duration,omitempty"`
	Words       *int              `json:"words,omitempty"`
	Category    *string           `json:"category,omitempty"`
	Numbers     *bool             `json:"numbers,omitempty"`
	Punctuation *bool             `json:"punctuation,omitempty"`
	Difficulty  *model.Difficulty `json:"difficulty,omitempty"`
	Sound       *bool             `json:"sound,omitempty"`
}

type inputRequest struct {
	Value string `json:"value"`
}

type categoryBody struct {
	Category string `json:"category"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type historyResponse struct {
	Summary stats.Summary         `json:"summary"`
	Records []model.HistoryRecord `json:"records"`
}

type sessionView struct {
	ID          string              `json:"id"`
	SessionID   string              `json:"sessionId"`
	Status      engine.Status       `json:"status"`
	Config      model.SessionConfig `json:"config"`
	Target      string              `json:"target"`
	Input       string              `json:"input"`
	Remaining   int                 `json:"remaining"`
	LastTyped   string              `json:"lastTyped,omitempty"`
	LastCorrect *bool               `json:"lastCorrect,omitempty"`
	Live        engine.Result       `json:"live"`
	Result      *engine.Result      `json:"result,omitempty"`
	Committed   bool                `json:"committed"`
	Saving      bool                `json:"saving"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (req sessionRequest) apply(cfg model.SessionConfig) model.SessionConfig {
	if req.Mode != nil {
		cfg.Mode = *req.Mode
	}
	if req.Duration != nil {
		cfg.Duration = *req.Duration
	}
	if req.Words != nil {
		cfg.WordTarget = *req.Words
	}
	if req.Category != nil {
		cfg.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Numbers != nil {
		cfg.Numbers = *req.Numbers
	}
	if req.Punctuation != nil {
		cfg.Punctuation = *req.Punctuation
	}
	if req.Difficulty != nil {
		cfg.Difficulty = *req.Difficulty
	}
	if req.Sound != nil {
		cfg.Sound = *req.Sound
	}
	return cfg
}

// --- Handlers ---

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	settings, err := h.store.LoadSettings(r.Context())
	if err != nil {
		h.internalError(w, "failed to load settings", err)
		return
	}
	category, err := h.store.LoadCategory(r.Context(), generator.DefaultCategory)
	if err != nil {
		h.internalError(w, "failed to load category", err)
		return
	}
	cfg := req.apply(settings.SessionConfig(category))
	if msg := h.validateConfig(cfg); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}
	id, session, err := h.sessions.Create(cfg)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.view(id, session))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.sessions.Get(id)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.view(id, session))
}

func (h *Handler) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	session, err := h.sessions.Input(id, req.Value)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.view(id, session))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	current, err := h.sessions.Get(id)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	var cfg *model.SessionConfig
	if next := req.apply(current.Config); next != current.Config {
		if msg := h.validateConfig(next); msg != "" {
			h.writeError(w, http.StatusBadRequest, msg)
			return
		}
		cfg = &next
	}
	session, err := h.sessions.Reset(id, cfg)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.view(id, session))
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.sessions.Get(id)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	rec, err := h.history.Commit(r.Context(), identityFrom(r), session)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusCreated, rec)
	case errors.Is(err, model.ErrSignInRequired):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, history.ErrNotFinished), errors.Is(err, history.ErrAlreadyCommitted):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, "failed to save result")
	}
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Delete(id); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := identityFrom(r).UserID()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	report, err := stats.BuildReport(r.Context(), h.store, model.StatsConfig{UserID: userID, Limit: limit, CurveWindow: 1})
	switch {
	case errors.Is(err, model.ErrSignInRequired):
		h.writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		h.internalError(w, "failed to load history", err)
		return
	}
	records := report.Records
	if records == nil {
		records = []model.HistoryRecord{}
	}
	h.writeJSON(w, http.StatusOK, historyResponse{Summary: report.Summary, Records: records})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.LoadSettings(r.Context())
	if err != nil {
		h.internalError(w, "failed to load settings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.LoadSettings(r.Context())
	if err != nil {
		h.internalError(w, "failed to load settings", err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := settings.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.SaveSettings(r.Context(), settings); err != nil {
		h.internalError(w, "failed to save settings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.LoadCategory(r.Context(), generator.DefaultCategory)
	if err != nil {
		h.internalError(w, "failed to load category", err)
		return
	}
	h.writeJSON(w, http.StatusOK, categoryBody{Category: category})
}

func (h *Handler) handlePutCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryBody
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if !h.gen.Banks().Has(category) {
		h.writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if err := h.store.SaveCategory(r.Context(), category); err != nil {
		h.internalError(w, "failed to save category", err)
		return
	}
	h.writeJSON(w, http.StatusOK, categoryBody{Category: category})
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, categoriesResponse{Categories: h.gen.Banks().Names()})
}

// --- Helpers ---

func (h *Handler) view(id string, s engine.Session) sessionView {
	v := sessionView{
		ID:          id,
		SessionID:   s.ID,
		Status:      s.Status,
		Config:      s.Config,
		Target:      s.TargetText(),
		Input:       s.InputText(),
		Remaining:   s.Remaining,
		LastCorrect: s.LastCorrect,
		Live:        engine.Compute(s, h.sessions.now()),
		Result:      s.Result,
		Committed:   h.history.Committed(s.ID),
		Saving:      h.history.Saving(s.ID),
	}
	if s.LastTyped != 0 {
		v.LastTyped = string(s.LastTyped)
	}
	return v
}

func (h *Handler) validateConfig(cfg model.SessionConfig) string {
	if err := cfg.Validate(); err != nil {
		return err.Error()
	}
	if !h.gen.Banks().Has(cfg.Category) {
		return "unknown category"
	}
	return ""
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, msg)
}

// decodeOptional decodes a JSON body that may be empty.
func (h *Handler) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func identityFrom(r *http.Request) history.StaticIdentity {
	return history.StaticIdentity(strings.TrimSpace(r.Header.Get(userHeader)))
}

func (h *Handler) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTooManySessions):
		h.writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("failed to write response", zap.Int("status", status), zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}
