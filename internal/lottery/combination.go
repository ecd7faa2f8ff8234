package lottery

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Snapshots store cost as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

var ErrInvalidCombination = errors.New("invalid combination")

type Combination struct {
	ID          string           `json:"id"`
	LotteryType enum.LotteryType `json:"lotteryType"`
	Numbers     []int            `json:"numbers"`
	NumDezenas  int              `json:"numDezenas"`
	Timestamp   int64            `json:"timestamp"` // unix millis
	Cost        decimal.Decimal  `json:"cost"`
	Source      enum.Source      `json:"source"`
}

// NewCombination stamps a fresh id and creation time onto numbers. The slice is copied.
func NewCombination(p Profile, numbers []int, cost decimal.Decimal, source enum.Source, now time.Time) Combination {
	return Combination{
		ID:          uuid.NewString(),
		LotteryType: p.Type,
		Numbers:     slices.Clone(numbers),
		NumDezenas:  len(numbers),
		Timestamp:   now.UnixMilli(),
		Cost:        cost,
		Source:      source,
	}
}

func (c Combination) CreatedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Validate checks the combination against the profile of its game.
func (c Combination) Validate(p Profile) error {
	if c.LotteryType != p.Type {
		return fmt.Errorf("%w: lottery %s does not match profile %s", ErrInvalidCombination, c.LotteryType, p.Type)
	}
	if c.NumDezenas != len(c.Numbers) {
		return fmt.Errorf("%w: numDezenas %d but %d numbers", ErrInvalidCombination, c.NumDezenas, len(c.Numbers))
	}
	if c.NumDezenas < p.MinNumbers || c.NumDezenas > p.MaxNumbers {
		return fmt.Errorf("%w: %d numbers outside [%d, %d]", ErrInvalidCombination, c.NumDezenas, p.MinNumbers, p.MaxNumbers)
	}
	for i, n := range c.Numbers {
		if !p.Contains(n) {
			return fmt.Errorf("%w: %d outside [1, %d]", ErrInvalidCombination, n, p.RangeMax)
		}
		if i > 0 && n <= c.Numbers[i-1] {
			return fmt.Errorf("%w: numbers must be distinct and ascending", ErrInvalidCombination)
		}
	}
	if !c.Source.IsValid() {
		return fmt.Errorf("%w: source %q", ErrInvalidCombination, c.Source)
	}
	if c.Cost.IsNegative() {
		return fmt.Errorf("%w: negative cost %s", ErrInvalidCombination, c.Cost)
	}
	return nil
}

// ListPrice is what the profile charges for c. Dream games are priced at
// the first table entry; everything else by its size, zero when unlisted.
func (c Combination) ListPrice(p Profile) decimal.Decimal {
	if c.Source == enum.SourceDream {
		return p.Prices[0].Price
	}
	return p.CostFor(c.NumDezenas)
}

// ValidateCost requires Cost to equal the list price. Budget games must
// also have a size the table lists.
func (c Combination) ValidateCost(p Profile) error {
	if _, ok := p.PriceFor(c.NumDezenas); !ok && c.Source == enum.SourceBudget {
		return fmt.Errorf("%w: no price for %d numbers", ErrInvalidCombination, c.NumDezenas)
	}
	if price := c.ListPrice(p); !c.Cost.Equal(price) {
		return fmt.Errorf("%w: cost %s, price table says %s", ErrInvalidCombination, c.Cost, price)
	}
	return nil
}
