package budget

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/internal/sampler"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/shopspring/decimal"
)

var (
	ErrRowNotFound = errors.New("no affordable option for that ticket size")
	ErrEmptyRow    = errors.New("budget row has no games to draw")
)

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// Row is the best purchase of one ticket size within a budget.
type Row struct {
	Numbers      int             `json:"numbers"`
	PricePerGame decimal.Decimal `json:"pricePerGame"`
	Quantity     int64           `json:"quantity"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Leftover     decimal.Decimal `json:"leftover"`
}

type Allocator struct {
	sampler *sampler.Sampler
	now     func() time.Time
}

func NewAllocator(s *sampler.Sampler) *Allocator {
	if s == nil {
		s = sampler.New(nil)
	}
	return &Allocator{sampler: s, now: time.Now}
}

// Simulate returns one row per affordable price entry, highest quantity first.
// Entries with equal quantity keep price table order. Quantities saturate at
// math.MaxInt64; totals and leftovers follow the saturated quantity.
func Simulate(p lottery.Profile, budget decimal.Decimal) []Row {
	if !budget.IsPositive() {
		return nil
	}
	rows := make([]Row, 0, len(p.Prices))
	for _, e := range p.Prices {
		if !e.Price.IsPositive() {
			continue
		}
		q, _ := budget.QuoRem(e.Price, 0)
		if !q.IsPositive() {
			continue
		}
		if q.GreaterThan(maxQuantity) {
			q = maxQuantity
		}
		total := q.Mul(e.Price)
		rows = append(rows, Row{
			Numbers:      e.Numbers,
			PricePerGame: e.Price,
			Quantity:     q.IntPart(),
			TotalCost:    total,
			Leftover:     budget.Sub(total),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Quantity > rows[j].Quantity
	})
	return rows
}

// Find picks the row for a ticket size out of a simulation.
func Find(rows []Row, numbers int) (Row, error) {
	for _, r := range rows {
		if r.Numbers == numbers {
			return r, nil
		}
	}
	return Row{}, fmt.Errorf("%w: %d numbers", ErrRowNotFound, numbers)
}

// Materialize draws row.Quantity independent combinations of row.Numbers.
// Repeats across combinations are allowed.
func (a *Allocator) Materialize(p lottery.Profile, row Row) ([]lottery.Combination, error) {
	if row.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %s/%d", ErrEmptyRow, p.Type, row.Numbers)
	}
	out := make([]lottery.Combination, 0, row.Quantity)
	now := a.now()
	for i := int64(0); i < row.Quantity; i++ {
		numbers, err := a.sampler.Generate(p, row.Numbers, nil)
		if err != nil {
			return nil, fmt.Errorf("materialize %s/%d: %w", p.Type, row.Numbers, err)
		}
		out = append(out, lottery.NewCombination(p, numbers, row.PricePerGame, enum.SourceBudget, now))
	}
	return out, nil
}

// ParseBudget reads a user-entered amount. Anything that is not a positive
// finite number yields zero. A decimal comma is accepted.
func ParseBudget(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero
	}
	return d
}
