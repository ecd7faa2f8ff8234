package lottery

import (
	"errors"
	"fmt"

	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/shopspring/decimal"
)

var ErrUnknownLottery = errors.New("unknown lottery type")

type PriceEntry struct {
	Numbers int             `json:"numbers"`
	Price   decimal.Decimal `json:"price"`
}

// Profile is the static description of one game. Prices are ordered by how
// they are presented, which is also the tie-break order for budget rows.
type Profile struct {
	Type       enum.LotteryType `json:"type"`
	Name       string           `json:"name"`
	MinNumbers int              `json:"minNumbers"`
	MaxNumbers int              `json:"maxNumbers"`
	RangeMax   int              `json:"rangeMax"`
	Prices     []PriceEntry     `json:"prices"`
	Color      string           `json:"color,omitempty"`
}

// PriceFor returns the unit price for a combination of n numbers.
func (p Profile) PriceFor(n int) (decimal.Decimal, bool) {
	for _, e := range p.Prices {
		if e.Numbers == n {
			return e.Price, true
		}
	}
	return decimal.Zero, false
}

// CostFor is PriceFor with zero standing in for a missing entry.
func (p Profile) CostFor(n int) decimal.Decimal {
	price, _ := p.PriceFor(n)
	return price
}

func (p Profile) Validate() error {
	if !p.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownLottery, p.Type)
	}
	if p.MinNumbers < 1 || p.MinNumbers > p.MaxNumbers {
		return fmt.Errorf("%s: min numbers %d must be in [1, %d]", p.Type, p.MinNumbers, p.MaxNumbers)
	}
	if p.MaxNumbers > p.RangeMax {
		return fmt.Errorf("%s: max numbers %d exceeds range %d", p.Type, p.MaxNumbers, p.RangeMax)
	}
	if len(p.Prices) == 0 {
		return fmt.Errorf("%s: empty price table", p.Type)
	}
	seen := make(map[int]struct{}, len(p.Prices))
	for _, e := range p.Prices {
		if e.Numbers < p.MinNumbers || e.Numbers > p.MaxNumbers {
			return fmt.Errorf("%s: price entry for %d numbers outside [%d, %d]", p.Type, e.Numbers, p.MinNumbers, p.MaxNumbers)
		}
		if _, dup := seen[e.Numbers]; dup {
			return fmt.Errorf("%s: duplicate price entry for %d numbers", p.Type, e.Numbers)
		}
		seen[e.Numbers] = struct{}{}
		if !e.Price.IsPositive() {
			return fmt.Errorf("%s: price for %d numbers must be positive", p.Type, e.Numbers)
		}
	}
	return nil
}

// Contains reports whether n is a drawable number of this game.
func (p Profile) Contains(n int) bool {
	return n >= 1 && n <= p.RangeMax
}
