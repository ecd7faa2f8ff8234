package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fystack/lottery-simulator/internal/dream"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/metrics"
)

type relayRequest struct {
	Sonho any `json:"sonho"`
}

type relayError struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type relayRaw struct {
	Raw     string `json:"raw"`
	Warning string `json:"warning"`
}

// RelayHandler serves the public dream relay. It is stateless: no age
// gate, no history.
type RelayHandler struct {
	interpreter dream.Interpreter
}

func NewRelayHandler(interpreter dream.Interpreter) *RelayHandler {
	return &RelayHandler{interpreter: interpreter}
}

func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, relayError{Error: "Use POST"})
		return
	}

	var req relayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, relayError{Error: "Envie { sonho: '...' }"})
		return
	}
	text := ""
	switch v := req.Sonho.(type) {
	case string:
		text = strings.TrimSpace(v)
	case float64, bool:
		text = fmt.Sprint(v)
	}
	if text == "" {
		writeJSON(w, http.StatusBadRequest, relayError{Error: "Envie { sonho: '...' }"})
		return
	}
	if h.interpreter == nil {
		writeJSON(w, http.StatusInternalServerError, relayError{Error: dream.MissingCredentialMessage})
		return
	}

	start := time.Now()
	in, err := h.interpreter.Interpret(r.Context(), text)
	if err == nil {
		metrics.RecordDream("ok", time.Since(start))
		writeJSON(w, http.StatusOK, in.RelayPayload())
		return
	}

	var (
		raw      *dream.RawResponseError
		upstream *dream.UpstreamError
	)
	switch {
	case errors.As(err, &raw):
		metrics.RecordDream("raw", time.Since(start))
		writeJSON(w, http.StatusOK, relayRaw{Raw: raw.Raw, Warning: raw.Warning})
	case errors.Is(err, dream.ErrMissingCredential):
		metrics.RecordDream("no_credential", time.Since(start))
		writeJSON(w, http.StatusInternalServerError, relayError{Error: dream.MissingCredentialMessage})
	case errors.As(err, &upstream):
		metrics.RecordDream("upstream_error", time.Since(start))
		logger.Warn("Gemini returned error", "status", upstream.Status)
		writeJSON(w, http.StatusInternalServerError, relayError{Error: "Gemini retornou erro", Details: upstream.Details})
	default:
		metrics.RecordDream("error", time.Since(start))
		logger.Error("Dream relay failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, relayError{Error: "Falha ao interpretar", Details: err.Error()})
	}
}
