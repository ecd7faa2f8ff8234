package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fystack/lottery-simulator/internal/budget"
	"github.com/fystack/lottery-simulator/internal/dream"
	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/internal/session"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/shopspring/decimal"
)

type HealthResponse struct {
	Status    string             `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	History   int                `json:"history"`
	Dream     *dream.ClientStats `json:"dream,omitempty"`
}

type generateRequest struct {
	LotteryType string `json:"lotteryType"`
	Numbers     int    `json:"numbers"`
	Fixed       []int  `json:"fixed"`
}

type saveRequest struct {
	Games []lottery.Combination `json:"games"`
}

type budgetRequest struct {
	LotteryType string `json:"lotteryType"`
	// Budget accepts a JSON number or a string with a decimal comma.
	Budget  json.RawMessage `json:"budget"`
	Numbers int             `json:"numbers,omitempty"`
}

type budgetResponse struct {
	Budget decimal.Decimal `json:"budget"`
	Rows   []budget.Row    `json:"rows"`
}

type dreamRequest struct {
	Sonho string `json:"sonho"`
}

type dreamSaveRequest struct {
	LotteryType string `json:"lotteryType"`
	Numbers     []int  `json:"numbers"`
}

type ageGateRequest struct {
	Confirmed bool `json:"confirmed"`
}

type ageGateResponse struct {
	Confirmed bool `json:"confirmed"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StatsReporter is implemented by dream clients that track upstream capacity.
type StatsReporter interface {
	Stats() dream.ClientStats
}

// Handler exposes one Session over HTTP.
type Handler struct {
	session    *session.Session
	version    string
	dreamStats StatsReporter
}

type HandlerOption func(*Handler)

// WithDreamStats adds the dream client's endpoint and rate limit state to /health.
func WithDreamStats(r StatsReporter) HandlerOption {
	return func(h *Handler) { h.dreamStats = r }
}

func NewHandler(s *session.Session, version string, opts ...HandlerOption) *Handler {
	h := &Handler{session: s, version: version}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		History:   len(h.session.History()),
	}
	if h.dreamStats != nil {
		st := h.dreamStats.Stats()
		resp.Dream = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listLotteries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Catalog().List())
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := enum.ParseLotteryType(req.LotteryType)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.session.Generate(t, req.Numbers, req.Fixed)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) saveGames(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.session.Save(r.Context(), req.Games...); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req.Games)
}

func parseBudgetRequest(w http.ResponseWriter, r *http.Request) (budgetRequest, enum.LotteryType, decimal.Decimal, bool) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return req, "", decimal.Zero, false
	}
	t, err := enum.ParseLotteryType(req.LotteryType)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return req, "", decimal.Zero, false
	}
	raw := strings.Trim(strings.TrimSpace(string(req.Budget)), `"`)
	return req, t, budget.ParseBudget(raw), true
}

func (h *Handler) simulateBudget(w http.ResponseWriter, r *http.Request) {
	_, t, amount, ok := parseBudgetRequest(w, r)
	if !ok {
		return
	}
	rows, err := h.session.SimulateBudget(t, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rows == nil {
		rows = []budget.Row{}
	}
	writeJSON(w, http.StatusOK, budgetResponse{Budget: amount, Rows: rows})
}

func (h *Handler) materializeBudget(w http.ResponseWriter, r *http.Request) {
	req, t, amount, ok := parseBudgetRequest(w, r)
	if !ok {
		return
	}
	combos, err := h.session.MaterializeBudget(r.Context(), t, amount, req.Numbers)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, combos)
}

func (h *Handler) interpretDream(w http.ResponseWriter, r *http.Request) {
	var req dreamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := h.session.InterpretDream(r.Context(), req.Sonho)
	if err != nil {
		if raw, ok := asRaw(err); ok {
			writeJSON(w, http.StatusOK, relayRaw{Raw: raw.Raw, Warning: raw.Warning})
			return
		}
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *Handler) saveDream(w http.ResponseWriter, r *http.Request) {
	var req dreamSaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := enum.ParseLotteryType(req.LotteryType)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.session.SaveDreamSuggestion(r.Context(), t, req.Numbers)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.session.History()
	if entries == nil {
		entries = []lottery.Combination{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ClearHistory(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getAgeGate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ageGateResponse{Confirmed: h.session.AgeConfirmed()})
}

func (h *Handler) putAgeGate(w http.ResponseWriter, r *http.Request) {
	var req ageGateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.session.ConfirmAge(r.Context(), req.Confirmed); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ageGateResponse{Confirmed: req.Confirmed})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.session.Login(req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout()
	w.WriteHeader(http.StatusNoContent)
}
