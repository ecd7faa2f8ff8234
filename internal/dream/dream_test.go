package dream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/pkg/common/config"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const relayJSON = `{
  "titulo": "Sonho com cachorro",
  "interpretacao": "Lealdade e proteção.",
  "bicho": {"nome": "Cachorro", "grupo": 5, "dezena": "19", "centena": "219", "milhar": "3219"},
  "loterias": {
    "megasena": [42, 7, 19, 3, 55, 21],
    "quina": [80, 1, 44, 12, 9],
    "lotofacil": [25, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14],
    "timemania": [10, 20, 30, 40, 50, 60, 70, 80, 5, 15]
  },
  "fraseFinal": "Boa sorte!"
}`

const structuredJSON = `{
  "titulo": "Mar calmo",
  "significado": "Tranquilidade.",
  "variacoes": [{"titulo": "Mar agitado", "texto": "Mudanças."}],
  "bicho": {"nome": "Jacaré", "grupo": 15, "dezenas": [60, 57, 58, 59], "dezena": 7, "centena": 57, "milhar": 1957, "observacao": "tradição"},
  "loterias_caixa_sugestoes": {
    "mega_sena": [60, 1, 30, 2, 45, 8],
    "quina": [],
    "lotofacil": ["03", 1, 2, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15],
    "timemania": []
  },
  "metodo": "tabela popular",
  "aviso": "Uso recreativo."
}`

func TestParseRelayShape(t *testing.T) {
	in, err := Parse(relayJSON, nil)
	require.NoError(t, err)

	assert.Equal(t, "Sonho com cachorro", in.Title)
	assert.Equal(t, "Lealdade e proteção.", in.Meaning)
	assert.Equal(t, "Cachorro", in.Bicho.Name)
	assert.Equal(t, 5, in.Bicho.Group)
	assert.Equal(t, "3219", in.Bicho.Milhar)
	assert.Equal(t, []int{3, 7, 19, 21, 42, 55}, in.Suggestions[enum.LotteryMegaSena])
	assert.Equal(t, []int{1, 9, 12, 44, 80}, in.Suggestions[enum.LotteryQuina])
	assert.Equal(t, []int{5, 10, 15, 20, 30, 40, 50, 60, 70, 80}, in.Suggestions[enum.LotteryTimemania])
	assert.Equal(t, "Boa sorte!", in.Closing)
}

func TestParseStructuredShape(t *testing.T) {
	in, err := Parse(structuredJSON, nil)
	require.NoError(t, err)

	assert.Equal(t, "Mar calmo", in.Title)
	assert.Equal(t, "Tranquilidade.", in.Meaning)
	require.Len(t, in.Variations, 1)
	assert.Equal(t, "Mar agitado", in.Variations[0].Title)
	assert.Equal(t, []int{57, 58, 59, 60}, in.Bicho.Dezenas)
	assert.Equal(t, "07", in.Bicho.Dezena)
	assert.Equal(t, "057", in.Bicho.Centena)
	assert.Equal(t, "1957", in.Bicho.Milhar)
	assert.Equal(t, []int{1, 2, 8, 30, 45, 60}, in.Suggestions[enum.LotteryMegaSena])
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, in.Suggestions[enum.LotteryLotofacil])
	assert.NotContains(t, in.Suggestions, enum.LotteryQuina)
	assert.Equal(t, "Uso recreativo.", in.Warning)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing title", `{"loterias": {"megasena": [1,2,3,4,5,6]}}`},
		{"no suggestions", `{"titulo": "x", "loterias": {"megasena": []}}`},
		{"no lottery object", `{"titulo": "x"}`},
		{"out of range", `{"titulo": "x", "loterias": {"megasena": [1,2,3,4,5,61]}}`},
		{"zero", `{"titulo": "x", "loterias": {"quina": [0,2,3,4,5]}}`},
		{"duplicate", `{"titulo": "x", "loterias": {"quina": [2,2,3,4,5]}}`},
		{"not integers", `{"titulo": "x", "loterias": {"quina": [1.5,2,3,4,5]}}`},
		{"not an array", `{"titulo": "x", "loterias": {"quina": "1,2,3"}}`},
		{"lotteries not object", `{"titulo": "x", "loterias": [1,2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, nil)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	_, err := Parse(`{"titulo": `, nil)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	_, err = Parse(`[1,2]`, nil)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestExtractJSON(t *testing.T) {
	obj, err := ExtractJSON("Claro! Aqui está:\n```json\n{\"a\": {\"b\": 1}}\n```\nBoa sorte")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": 1}}`, obj)

	_, err = ExtractJSON("Não sei interpretar esse sonho.")
	var raw *RawResponseError
	require.ErrorAs(t, err, &raw)
	assert.Equal(t, "Não sei interpretar esse sonho.", raw.Raw)
	assert.Equal(t, RawWarning, raw.Warning)

	_, err = ExtractJSON("} backwards {")
	assert.ErrorAs(t, err, &raw)

	_, err = ExtractJSON("{ not json }")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRelayPayload(t *testing.T) {
	in, err := Parse(structuredJSON, nil)
	require.NoError(t, err)

	data, err := json.Marshal(in.RelayPayload())
	require.NoError(t, err)
	body := gjson.ParseBytes(data)
	assert.Equal(t, "Mar calmo", body.Get("titulo").String())
	assert.Equal(t, "Tranquilidade.", body.Get("interpretacao").String())
	assert.Equal(t, "Jacaré", body.Get("bicho.nome").String())
	assert.Equal(t, int64(15), body.Get("bicho.grupo").Int())
	assert.Equal(t, "[]", body.Get("loterias.quina").Raw)
	assert.Len(t, body.Get("loterias.megasena").Array(), 6)
	assert.Equal(t, "Uso recreativo.", body.Get("fraseFinal").String())
}

func TestProject(t *testing.T) {
	in, err := Parse(relayJSON, nil)
	require.NoError(t, err)
	catalog := lottery.DefaultCatalog()
	now := time.UnixMilli(1700000000000)

	c, err := Project(in, enum.LotteryLotofacil, catalog, now)
	require.NoError(t, err)
	assert.Equal(t, enum.SourceDream, c.Source)
	assert.Equal(t, 15, c.NumDezenas)
	assert.True(t, c.Cost.Equal(decimal.RequireFromString("3.50")))
	assert.Equal(t, now.UnixMilli(), c.Timestamp)

	// cost comes from the first price entry even for larger suggestions
	in.Suggestions[enum.LotteryMegaSena] = []int{1, 2, 3, 4, 5, 6, 7}
	c, err = Project(in, enum.LotteryMegaSena, catalog, now)
	require.NoError(t, err)
	assert.True(t, c.Cost.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 7, c.NumDezenas)

	delete(in.Suggestions, enum.LotteryQuina)
	_, err = Project(in, enum.LotteryQuina, catalog, now)
	assert.ErrorIs(t, err, ErrNoSuggestion)
}

// geminiBody wraps model text the way generateContent does.
func geminiBody(t *testing.T, text ...string) []byte {
	t.Helper()
	parts := make([]map[string]string, len(text))
	for i, s := range text {
		parts[i] = map[string]string{"text": s}
	}
	data, err := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{"content": map[string]any{"role": "model", "parts": parts}}},
	})
	require.NoError(t, err)
	return data
}

func testConfig(endpoints ...string) config.DreamConfig {
	cfg := config.Default().Dream
	cfg.APIKey = "test-key"
	cfg.Endpoints = endpoints
	cfg.RateLimit = config.RateLimitConfig{RPS: 100, Burst: 100}
	return cfg
}

func TestClientInterpretRelay(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geminiBody(t, "Aqui está o resultado:\n", relayJSON, "\nFim."))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), lottery.DefaultCatalog())
	in, err := c.Interpret(context.Background(), "  sonhei com um cachorro  ")
	require.NoError(t, err)
	assert.Equal(t, "Sonho com cachorro", in.Title)

	req := gjson.ParseBytes(gotBody)
	prompt := req.Get("contents.0.parts.0.text").String()
	assert.Contains(t, prompt, `"""sonhei com um cachorro"""`)
	assert.Equal(t, "user", req.Get("contents.0.role").String())
	assert.InDelta(t, 0.7, req.Get("generationConfig.temperature").Float(), 1e-9)
	assert.Equal(t, int64(1024), req.Get("generationConfig.maxOutputTokens").Int())
	assert.False(t, req.Get("generationConfig.responseSchema").Exists())
}

func TestClientInterpretStructured(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write(geminiBody(t, structuredJSON))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Variant = config.DreamVariantStructured
	in, err := NewClient(cfg, nil).Interpret(context.Background(), "mar calmo")
	require.NoError(t, err)
	assert.Equal(t, "Mar calmo", in.Title)

	req := gjson.ParseBytes(gotBody)
	assert.Equal(t, "application/json", req.Get("generationConfig.responseMimeType").String())
	assert.Equal(t, "OBJECT", req.Get("generationConfig.responseSchema.type").String())
	assert.Equal(t, "INTEGER", req.Get("generationConfig.responseSchema.properties.bicho.properties.grupo.type").String())
}

func TestClientRejectsBeforeIO(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), nil).Interpret(context.Background(), " \n\t")
	assert.ErrorIs(t, err, ErrEmptyDream)

	cfg := testConfig(srv.URL)
	cfg.APIKey = ""
	_, err = NewClient(cfg, nil).Interpret(context.Background(), "sonho")
	assert.ErrorIs(t, err, ErrMissingCredential)

	assert.Zero(t, calls.Load())
}

func TestClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), nil).Interpret(context.Background(), "sonho")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.Status)
	raw, ok := upstream.Details.(json.RawMessage)
	require.True(t, ok)
	assert.Contains(t, string(raw), "API key not valid")
}

func TestClientRawResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiBody(t, "Sonhar com água é bom sinal."))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), nil).Interpret(context.Background(), "água")
	var raw *RawResponseError
	require.ErrorAs(t, err, &raw)
	assert.Equal(t, "Sonhar com água é bom sinal.", raw.Raw)
}

func TestClientMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiBody(t, `{"titulo": "x", "loterias": {`, "}"))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), nil).Interpret(context.Background(), "sonho")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClientFailingEndpointIsSkipped(t *testing.T) {
	var badCalls, goodCalls atomic.Int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		badCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		goodCalls.Add(1)
		_, _ = w.Write(geminiBody(t, relayJSON))
	}))
	defer good.Close()

	c := NewClient(testConfig(bad.URL, good.URL), nil)

	// no retry within a call
	_, err := c.Interpret(context.Background(), "sonho")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, int32(1), badCalls.Load())
	assert.Zero(t, goodCalls.Load())

	for range 3 {
		_, err = c.Interpret(context.Background(), "sonho")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), badCalls.Load())
	assert.Equal(t, int32(3), goodCalls.Load())
}

func TestClientHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// drain the body so the server notices the client disconnect
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(testConfig(srv.URL), nil).Interpret(ctx, "sonho")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
