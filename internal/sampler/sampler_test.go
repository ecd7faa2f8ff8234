package sampler

import (
	"slices"
	"testing"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	RandomSource
	calls int
}

func (c *countingSource) IntN(n int) int {
	c.calls++
	return c.RandomSource.IntN(n)
}

func evenCount(numbers []int) int {
	count := 0
	for _, n := range numbers {
		if n%2 == 0 {
			count++
		}
	}
	return count
}

func TestGenerateProperties(t *testing.T) {
	catalog := lottery.DefaultCatalog()
	s := New(NewSeededSource(42))

	tests := []struct {
		lottery enum.LotteryType
		target  int
		fixed   []int
	}{
		{enum.LotteryMegaSena, 6, nil},
		{enum.LotteryMegaSena, 15, []int{60, 1, 30}},
		{enum.LotteryLotofacil, 15, nil},
		{enum.LotteryLotofacil, 20, []int{2, 4, 6, 8, 10, 12}},
		{enum.LotteryQuina, 5, []int{80}},
		{enum.LotteryTimemania, 10, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.lottery), func(t *testing.T) {
			p := catalog[tt.lottery]
			for range 200 {
				got, err := s.Generate(p, tt.target, tt.fixed)
				require.NoError(t, err)
				require.Len(t, got, tt.target)
				assert.True(t, slices.IsSorted(got))
				assert.Len(t, slices.Compact(slices.Clone(got)), tt.target, "numbers must be distinct")
				for _, n := range got {
					assert.True(t, n >= 1 && n <= p.RangeMax)
				}
				for _, f := range tt.fixed {
					assert.Contains(t, got, f)
				}
			}
		})
	}
}

func TestGenerateParityBalance(t *testing.T) {
	catalog := lottery.DefaultCatalog()
	s := New(NewSeededSource(7))

	for _, tt := range []struct {
		lottery enum.LotteryType
		target  int
	}{
		{enum.LotteryMegaSena, 6},
		{enum.LotteryMegaSena, 10},
		{enum.LotteryQuina, 8},
		{enum.LotteryLotofacil, 16},
		{enum.LotteryLotofacil, 15},
	} {
		p := catalog[tt.lottery]
		balanced := 0
		const trials = 500
		for range trials {
			got, err := s.Generate(p, tt.target, nil)
			require.NoError(t, err)
			diff := evenCount(got) - tt.target/2
			if diff >= -1 && diff <= 1 {
				balanced++
			}
		}
		assert.GreaterOrEqual(t, balanced, trials*95/100, "%s/%d", tt.lottery, tt.target)
	}
}

func TestGenerateFixedSkewFallsBack(t *testing.T) {
	// six fixed evens already exceed the even target; the remaining picks come from odds
	p := lottery.DefaultCatalog()[enum.LotteryMegaSena]
	got, err := New(NewSeededSource(1)).Generate(p, 8, []int{2, 4, 6, 8, 10, 12})
	require.NoError(t, err)
	assert.Equal(t, 6, evenCount(got))
}

func TestGenerateSmallRangeFallback(t *testing.T) {
	// only 2 odd numbers exist, so the odd restriction empties and the pool widens
	p := lottery.Profile{
		Type:       enum.LotteryQuina,
		MinNumbers: 4,
		MaxNumbers: 4,
		RangeMax:   4,
		Prices:     []lottery.PriceEntry{{Numbers: 4, Price: decimal.NewFromInt(1)}},
	}
	got, err := New(NewSeededSource(3)).Generate(p, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestGenerateAllFixedSkipsRandomness(t *testing.T) {
	p := lottery.DefaultCatalog()[enum.LotteryQuina]
	src := &countingSource{RandomSource: NewSeededSource(1)}

	got, err := New(src).Generate(p, 5, []int{50, 3, 77, 12, 9})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 9, 12, 50, 77}, got)
	assert.Zero(t, src.calls)
}

func TestGenerateDoesNotMutateFixed(t *testing.T) {
	p := lottery.DefaultCatalog()[enum.LotteryQuina]
	fixed := []int{50, 3}
	_, err := New(nil).Generate(p, 5, fixed)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 3}, fixed)
}

func TestGenerateSeededIsReproducible(t *testing.T) {
	p := lottery.DefaultCatalog()[enum.LotteryMegaSena]
	a, err := New(NewSeededSource(99)).Generate(p, 12, nil)
	require.NoError(t, err)
	b, err := New(NewSeededSource(99)).Generate(p, 12, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	catalog := lottery.DefaultCatalog()
	mega := catalog[enum.LotteryMegaSena]
	s := New(NewSeededSource(1))

	tests := []struct {
		name   string
		p      lottery.Profile
		target int
		fixed  []int
		want   error
	}{
		{"below min", mega, 5, nil, ErrInvalidTarget},
		{"above max", mega, 21, nil, ErrInvalidTarget},
		{"too many fixed", catalog[enum.LotteryQuina], 5, []int{1, 2, 3, 4, 5, 6}, ErrInvalidFixed},
		{"fixed out of range", mega, 6, []int{61}, ErrInvalidFixed},
		{"fixed zero", mega, 6, []int{0}, ErrInvalidFixed},
		{"fixed duplicate", mega, 6, []int{7, 7}, ErrInvalidFixed},
		{"missing price entry", lottery.Profile{
			Type: enum.LotteryQuina, MinNumbers: 5, MaxNumbers: 7, RangeMax: 80,
			Prices: []lottery.PriceEntry{{Numbers: 5, Price: decimal.NewFromInt(3)}},
		}, 6, nil, ErrInvalidTarget},
		{"range too small", lottery.Profile{
			Type: enum.LotteryQuina, MinNumbers: 5, MaxNumbers: 5, RangeMax: 4,
			Prices: []lottery.PriceEntry{{Numbers: 5, Price: decimal.NewFromInt(3)}},
		}, 5, nil, ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Generate(tt.p, tt.target, tt.fixed)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
