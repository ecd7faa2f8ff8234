package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fystack/lottery-simulator/internal/budget"
	"github.com/fystack/lottery-simulator/internal/dream"
	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/internal/sampler"
	"github.com/fystack/lottery-simulator/internal/session"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
)

const maxBodyBytes = 1 << 20

type APIErrorResponse struct {
	Status    string    `json:"status"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "status", statusCode, "err", err)
	}
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, APIErrorResponse{
		Status:    "error",
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		upstream *dream.UpstreamError
		invalid  *dream.ValidationError
	)
	switch {
	case errors.Is(err, session.ErrAgeNotConfirmed):
		return http.StatusForbidden
	case errors.Is(err, session.ErrDreamInFlight):
		return http.StatusConflict
	case errors.Is(err, lottery.ErrUnknownLottery),
		errors.Is(err, lottery.ErrInvalidCombination),
		errors.Is(err, sampler.ErrInvalidTarget),
		errors.Is(err, sampler.ErrInvalidFixed),
		errors.Is(err, budget.ErrRowNotFound),
		errors.Is(err, budget.ErrEmptyRow),
		errors.Is(err, session.ErrEmptyBatch),
		errors.Is(err, session.ErrTooManyGames),
		errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, dream.ErrEmptyDream),
		errors.Is(err, dream.ErrNoSuggestion):
		return http.StatusBadRequest
	case errors.Is(err, dream.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream), errors.As(err, &invalid), errors.Is(err, dream.ErrMalformedResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeErrorJSON(w, status, err.Error())
}

func asRaw(err error) (*dream.RawResponseError, bool) {
	var raw *dream.RawResponseError
	if errors.As(err, &raw) {
		return raw, true
	}
	return nil, false
}
