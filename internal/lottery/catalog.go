package lottery

import (
	"fmt"

	"github.com/fystack/lottery-simulator/pkg/common/config"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/imdario/mergo"
	"github.com/shopspring/decimal"
)

// Catalog maps each lottery type to its profile.
type Catalog map[enum.LotteryType]Profile

func prices(numbers int, values ...string) []PriceEntry {
	out := make([]PriceEntry, len(values))
	for i, v := range values {
		out[i] = PriceEntry{Numbers: numbers + i, Price: decimal.RequireFromString(v)}
	}
	return out
}

// DefaultCatalog returns a fresh copy of the built-in games.
func DefaultCatalog() Catalog {
	return Catalog{
		enum.LotteryMegaSena: {
			Type:       enum.LotteryMegaSena,
			Name:       "Mega-Sena",
			MinNumbers: 6,
			MaxNumbers: 20,
			RangeMax:   60,
			Color:      "green",
			Prices: prices(6,
				"6.00", "42.00", "168.00", "504.00", "1260.00",
				"2772.00", "5544.00", "10296.00", "18018.00", "30030.00",
				"48048.00", "74256.00", "111384.00", "162792.00", "232560.00",
			),
		},
		enum.LotteryLotofacil: {
			Type:       enum.LotteryLotofacil,
			Name:       "Lotofácil",
			MinNumbers: 15,
			MaxNumbers: 20,
			RangeMax:   25,
			Color:      "purple",
			Prices:     prices(15, "3.50", "56.00", "476.00", "2856.00", "13566.00", "54264.00"),
		},
		enum.LotteryQuina: {
			Type:       enum.LotteryQuina,
			Name:       "Quina",
			MinNumbers: 5,
			MaxNumbers: 15,
			RangeMax:   80,
			Color:      "blue",
			Prices: prices(5,
				"3.00", "18.00", "63.00", "168.00", "378.00", "756.00",
				"1386.00", "2376.00", "3861.00", "6006.00", "9009.00",
			),
		},
		enum.LotteryTimemania: {
			Type:       enum.LotteryTimemania,
			Name:       "Timemania",
			MinNumbers: 10,
			MaxNumbers: 10,
			RangeMax:   80,
			Color:      "yellow",
			Prices:     prices(10, "3.50"),
		},
	}
}

// NewCatalog merges config overrides onto the built-in games and validates the result.
func NewCatalog(overrides map[enum.LotteryType]config.LotteryConfig) (Catalog, error) {
	catalog := DefaultCatalog()
	for t, o := range overrides {
		base, ok := catalog[t]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLottery, t)
		}
		patch := Profile{
			Name:       o.Name,
			MinNumbers: o.MinNumbers,
			MaxNumbers: o.MaxNumbers,
			RangeMax:   o.RangeMax,
			Color:      o.Color,
		}
		for _, p := range o.Prices {
			patch.Prices = append(patch.Prices, PriceEntry{Numbers: p.Numbers, Price: p.Price})
		}
		// A non-empty price list replaces the built-in table as a whole.
		if err := mergo.Merge(&base, patch, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge %s override: %w", t, err)
		}
		catalog[t] = base
	}
	for _, p := range catalog {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func (c Catalog) Get(t enum.LotteryType) (Profile, error) {
	p, ok := c[t]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownLottery, t)
	}
	return p, nil
}

// List returns the profiles in display order.
func (c Catalog) List() []Profile {
	out := make([]Profile, 0, len(c))
	for _, t := range enum.LotteryTypes {
		if p, ok := c[t]; ok {
			out = append(out, p)
		}
	}
	return out
}
