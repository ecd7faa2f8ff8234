package dream

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var validate = validator.New()

type Bicho struct {
	Name    string `json:"nome"`
	Group   int    `json:"grupo"`
	Dezenas []int  `json:"dezenas,omitempty"`
	Dezena  string `json:"dezena"`
	Centena string `json:"centena"`
	Milhar  string `json:"milhar"`
	Note    string `json:"observacao,omitempty"`
}

type Variation struct {
	Title string `json:"titulo"`
	Text  string `json:"texto"`
}

// Interpretation is the validated result of a dream call, independent of
// which prompt shape produced it.
type Interpretation struct {
	Title       string                     `json:"titulo"      validate:"required"`
	Meaning     string                     `json:"significado"`
	Variations  []Variation                `json:"variacoes,omitempty"`
	Bicho       Bicho                      `json:"bicho"`
	Suggestions map[enum.LotteryType][]int `json:"sugestoes"   validate:"required,min=1"`
	Method      string                     `json:"metodo,omitempty"`
	Warning     string                     `json:"aviso,omitempty"`
	Closing     string                     `json:"fraseFinal,omitempty"`
}

// Keys of the suggestion object in each response shape.
var (
	relayKeys = map[string]enum.LotteryType{
		"megasena":  enum.LotteryMegaSena,
		"quina":     enum.LotteryQuina,
		"lotofacil": enum.LotteryLotofacil,
		"timemania": enum.LotteryTimemania,
	}
	structuredKeys = map[string]enum.LotteryType{
		"mega_sena": enum.LotteryMegaSena,
		"quina":     enum.LotteryQuina,
		"lotofacil": enum.LotteryLotofacil,
		"timemania": enum.LotteryTimemania,
	}
)

// Parse reads either response shape and validates it against catalog
// (DefaultCatalog when nil). Every number list comes back sorted.
func Parse(text string, catalog lottery.Catalog) (*Interpretation, error) {
	if !gjson.Valid(text) {
		return nil, ErrMalformedResponse
	}
	root := gjson.Parse(text)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformedResponse)
	}

	var (
		in  *Interpretation
		err error
	)
	switch {
	case root.Get("loterias").Exists():
		in, err = parseRelay(root)
	case root.Get("loterias_caixa_sugestoes").Exists():
		in, err = parseStructured(root)
	default:
		return nil, &ValidationError{Field: "loterias", Reason: "is missing"}
	}
	if err != nil {
		return nil, err
	}

	if catalog == nil {
		catalog = lottery.DefaultCatalog()
	}
	if err := in.validate(catalog); err != nil {
		return nil, err
	}
	return in, nil
}

func parseRelay(root gjson.Result) (*Interpretation, error) {
	suggestions, err := parseSuggestions(root.Get("loterias"), "loterias", relayKeys)
	if err != nil {
		return nil, err
	}
	b := root.Get("bicho")
	return &Interpretation{
		Title:   root.Get("titulo").String(),
		Meaning: root.Get("interpretacao").String(),
		Bicho: Bicho{
			Name:    b.Get("nome").String(),
			Group:   int(b.Get("grupo").Int()),
			Dezena:  padded(b.Get("dezena"), 2),
			Centena: padded(b.Get("centena"), 3),
			Milhar:  padded(b.Get("milhar"), 4),
		},
		Suggestions: suggestions,
		Closing:     root.Get("fraseFinal").String(),
	}, nil
}

func parseStructured(root gjson.Result) (*Interpretation, error) {
	suggestions, err := parseSuggestions(root.Get("loterias_caixa_sugestoes"), "loterias_caixa_sugestoes", structuredKeys)
	if err != nil {
		return nil, err
	}
	b := root.Get("bicho")
	dezenas, err := ints(b.Get("dezenas"), "bicho.dezenas")
	if err != nil {
		return nil, err
	}
	slices.Sort(dezenas)

	var variations []Variation
	root.Get("variacoes").ForEach(func(_, v gjson.Result) bool {
		variations = append(variations, Variation{
			Title: v.Get("titulo").String(),
			Text:  v.Get("texto").String(),
		})
		return true
	})

	return &Interpretation{
		Title:      root.Get("titulo").String(),
		Meaning:    root.Get("significado").String(),
		Variations: variations,
		Bicho: Bicho{
			Name:    b.Get("nome").String(),
			Group:   int(b.Get("grupo").Int()),
			Dezenas: dezenas,
			Dezena:  padded(b.Get("dezena"), 2),
			Centena: padded(b.Get("centena"), 3),
			Milhar:  padded(b.Get("milhar"), 4),
			Note:    b.Get("observacao").String(),
		},
		Suggestions: suggestions,
		Method:      root.Get("metodo").String(),
		Warning:     root.Get("aviso").String(),
	}, nil
}

func parseSuggestions(obj gjson.Result, field string, keys map[string]enum.LotteryType) (map[enum.LotteryType][]int, error) {
	if !obj.IsObject() {
		return nil, &ValidationError{Field: field, Reason: "must be an object"}
	}
	out := make(map[enum.LotteryType][]int, len(keys))
	for key, t := range keys {
		numbers, err := ints(obj.Get(key), field+"."+key)
		if err != nil {
			return nil, err
		}
		if len(numbers) == 0 {
			continue
		}
		slices.Sort(numbers)
		out[t] = numbers
	}
	return out, nil
}

// ints reads a JSON array of integers, accepting numeric strings such as "07".
func ints(arr gjson.Result, field string) ([]int, error) {
	if !arr.Exists() || arr.Type == gjson.Null {
		return nil, nil
	}
	if !arr.IsArray() {
		return nil, &ValidationError{Field: field, Reason: "must be an array"}
	}
	var (
		out []int
		bad bool
	)
	arr.ForEach(func(_, v gjson.Result) bool {
		switch v.Type {
		case gjson.Number:
			if v.Num != float64(int(v.Num)) {
				bad = true
				return false
			}
			out = append(out, int(v.Num))
		case gjson.String:
			n, err := strconv.Atoi(strings.TrimSpace(v.Str))
			if err != nil {
				bad = true
				return false
			}
			out = append(out, n)
		default:
			bad = true
			return false
		}
		return true
	})
	if bad {
		return nil, &ValidationError{Field: field, Reason: "must contain only integers"}
	}
	return out, nil
}

func padded(v gjson.Result, width int) string {
	switch v.Type {
	case gjson.Number:
		return fmt.Sprintf("%0*d", width, v.Int())
	case gjson.String:
		return strings.TrimSpace(v.Str)
	}
	return ""
}

func (in *Interpretation) validate(catalog lottery.Catalog) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{Field: verrs[0].Field(), Reason: "failed " + verrs[0].Tag()}
		}
		return err
	}
	for t, numbers := range in.Suggestions {
		p, err := catalog.Get(t)
		if err != nil {
			return err
		}
		for i, n := range numbers {
			if !p.Contains(n) {
				return &ValidationError{Field: string(t), Reason: fmt.Sprintf("number %d outside [1, %d]", n, p.RangeMax)}
			}
			if i > 0 && numbers[i-1] == n {
				return &ValidationError{Field: string(t), Reason: fmt.Sprintf("number %d repeated", n)}
			}
		}
	}
	return nil
}

type RelayBicho struct {
	Nome    string `json:"nome"`
	Grupo   int    `json:"grupo"`
	Dezena  string `json:"dezena"`
	Centena string `json:"centena"`
	Milhar  string `json:"milhar"`
}

type RelayLoterias struct {
	MegaSena  []int `json:"megasena"`
	Quina     []int `json:"quina"`
	Lotofacil []int `json:"lotofacil"`
	Timemania []int `json:"timemania"`
}

// RelayResponse is the body served by the dream relay endpoint.
type RelayResponse struct {
	Titulo        string        `json:"titulo"`
	Interpretacao string        `json:"interpretacao"`
	Bicho         RelayBicho    `json:"bicho"`
	Loterias      RelayLoterias `json:"loterias"`
	FraseFinal    string        `json:"fraseFinal"`
}

func (in *Interpretation) numbers(t enum.LotteryType) []int {
	if n := in.Suggestions[t]; n != nil {
		return slices.Clone(n)
	}
	return []int{}
}

// RelayPayload renders the interpretation in the relay shape.
func (in *Interpretation) RelayPayload() RelayResponse {
	closing := in.Closing
	if closing == "" {
		closing = in.Warning
	}
	return RelayResponse{
		Titulo:        in.Title,
		Interpretacao: in.Meaning,
		Bicho: RelayBicho{
			Nome:    in.Bicho.Name,
			Grupo:   in.Bicho.Group,
			Dezena:  in.Bicho.Dezena,
			Centena: in.Bicho.Centena,
			Milhar:  in.Bicho.Milhar,
		},
		Loterias: RelayLoterias{
			MegaSena:  in.numbers(enum.LotteryMegaSena),
			Quina:     in.numbers(enum.LotteryQuina),
			Lotofacil: in.numbers(enum.LotteryLotofacil),
			Timemania: in.numbers(enum.LotteryTimemania),
		},
		FraseFinal: closing,
	}
}
