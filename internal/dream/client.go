package dream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/internal/pool"
	"github.com/fystack/lottery-simulator/pkg/common/config"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/ratelimiter"
	"github.com/tidwall/gjson"
)

// Interpreter turns a dream description into lottery suggestions.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (*Interpretation, error)
}

const maxResponseBytes = 1 << 20

// Client calls the Gemini generateContent API. Each Interpret makes at most
// one HTTP request.
type Client struct {
	httpClient      *http.Client
	apiKey          string
	variant         config.DreamVariant
	temperature     float64
	maxOutputTokens int
	endpoints       *pool.Pool
	limiter         *ratelimiter.Limiter
	catalog         lottery.Catalog
}

// ClientStats reports upstream capacity for health checks.
type ClientStats struct {
	Configured bool              `json:"configured"`
	Endpoints  pool.Stats        `json:"endpoints"`
	RateLimit  ratelimiter.Stats `json:"rateLimit"`
}

func (c *Client) Stats() ClientStats {
	return ClientStats{
		Configured: c.apiKey != "",
		Endpoints:  c.endpoints.Stats(),
		RateLimit:  c.limiter.Stats(),
	}
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func NewClient(cfg config.DreamConfig, catalog lottery.Catalog, opts ...Option) *Client {
	c := &Client{
		// zero Timeout leaves the call bounded only by ctx
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		apiKey:          cfg.APIKey,
		variant:         cfg.Variant,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		endpoints:       pool.New(cfg.Endpoints, pool.DefaultCooldown),
		limiter:         ratelimiter.New(cfg.RateLimit),
		catalog:         catalog,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   schema  `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

func (c *Client) buildRequest(text string) generateRequest {
	gen := generationConfig{
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxOutputTokens,
	}
	if c.variant == config.DreamVariantStructured {
		gen.ResponseMimeType = "application/json"
		gen.ResponseSchema = responseSchema
	}
	return generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: buildPrompt(c.variant, text)}}}},
		GenerationConfig: gen,
	}
}

func (c *Client) Interpret(ctx context.Context, text string) (*Interpretation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyDream
	}
	if c.apiKey == "" {
		return nil, ErrMissingCredential
	}
	waited, err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("dream rate limit: %w", err)
	}
	if waited > time.Second {
		logger.Debug("Dream call throttled", "waited", waited)
	}

	endpoint := c.endpoints.Next()
	body, err := json.Marshal(c.buildRequest(text))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build dream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.endpoints.MarkFailed(endpoint)
		return nil, fmt.Errorf("dream request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.endpoints.MarkFailed(endpoint)
		return nil, fmt.Errorf("read dream response: %w", err)
	}
	logger.Debug("Dream response received",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			c.endpoints.MarkFailed(endpoint)
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Details: upstreamDetails(data)}
	}
	c.endpoints.MarkHealthy(endpoint)

	return c.decode(data)
}

func (c *Client) decode(data []byte) (*Interpretation, error) {
	var sb strings.Builder
	for _, p := range gjson.GetBytes(data, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(p.String())
	}
	obj, err := ExtractJSON(sb.String())
	if err != nil {
		return nil, err
	}
	return Parse(obj, c.catalog)
}

// ExtractJSON slices text from the first '{' to the last '}'. Text without
// such a span yields a *RawResponseError holding the text.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", &RawResponseError{Raw: text, Warning: RawWarning}
	}
	obj := text[start : end+1]
	if !gjson.Valid(obj) {
		return "", ErrMalformedResponse
	}
	return obj, nil
}
