package dream

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyDream        = errors.New("dream text is empty")
	ErrMissingCredential = errors.New("gemini api key not configured")
	ErrMalformedResponse = errors.New("model returned malformed JSON")
	ErrNoSuggestion      = errors.New("interpretation has no numbers for that lottery")
)

const (
	// MissingCredentialMessage is shown to users when no key is configured.
	MissingCredentialMessage = "Chave do Gemini não encontrada. Configure GEMINI_API_KEY (ou GOOGLE_API_KEY) e reinicie o serviço."
	// RawWarning accompanies model output that held no JSON object.
	RawWarning = "Não consegui extrair JSON limpo; retornando texto bruto."
)

// UpstreamError is a non-2xx answer from the model API.
type UpstreamError struct {
	Status  int
	Details any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini returned status %d", e.Status)
}

// upstreamDetails keeps a JSON error body as-is and falls back to the raw text.
func upstreamDetails(body []byte) any {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// RawResponseError carries model text in which no JSON object was found.
type RawResponseError struct {
	Raw     string
	Warning string
}

func (e *RawResponseError) Error() string {
	return "no JSON object in model response"
}

// ValidationError reports a response that parsed but does not fit the expected shape.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid interpretation: %s %s", e.Field, e.Reason)
}
