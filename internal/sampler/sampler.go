package sampler

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/samber/lo"
)

var (
	ErrInvalidTarget = errors.New("invalid target count")
	ErrInvalidFixed  = errors.New("invalid fixed numbers")
)

// Sampler draws unique numbers for a lottery profile, nudging the result
// towards an even/odd split.
type Sampler struct {
	rng RandomSource
}

// New returns a sampler over rng. A nil rng uses DefaultSource.
func New(rng RandomSource) *Sampler {
	if rng == nil {
		rng = DefaultSource()
	}
	return &Sampler{rng: rng}
}

// Generate returns target distinct ascending numbers from [1, RangeMax] that
// include every fixed number.
func (s *Sampler) Generate(p lottery.Profile, target int, fixed []int) ([]int, error) {
	if err := validate(p, target, fixed); err != nil {
		return nil, err
	}

	chosen := make([]int, 0, target)
	chosen = append(chosen, fixed...)
	if len(chosen) == target {
		slices.Sort(chosen)
		return chosen, nil
	}

	pool := lo.Without(lo.RangeFrom(1, p.RangeMax), fixed...)

	targetEven := target / 2
	targetOdd := target - targetEven
	evens := lo.CountBy(chosen, isEven)
	odds := len(chosen) - evens

	for len(chosen) < target {
		var candidates []int
		switch {
		case evens >= targetEven:
			candidates = lo.Reject(pool, func(n int, _ int) bool { return isEven(n) })
		case odds >= targetOdd:
			candidates = lo.Filter(pool, func(n int, _ int) bool { return isEven(n) })
		}
		// restriction can leave nothing, e.g. when the fixed numbers already skew parity
		if len(candidates) == 0 {
			candidates = pool
		}

		pick := candidates[s.rng.IntN(len(candidates))]
		chosen = append(chosen, pick)
		if isEven(pick) {
			evens++
		} else {
			odds++
		}
		pool = remove(pool, pick)
	}

	slices.Sort(chosen)
	return chosen, nil
}

func validate(p lottery.Profile, target int, fixed []int) error {
	if target < p.MinNumbers || target > p.MaxNumbers {
		return fmt.Errorf("%w: %d not in [%d, %d] for %s", ErrInvalidTarget, target, p.MinNumbers, p.MaxNumbers, p.Type)
	}
	if _, ok := p.PriceFor(target); !ok {
		return fmt.Errorf("%w: no price entry for %d numbers in %s", ErrInvalidTarget, target, p.Type)
	}
	if p.RangeMax < target {
		return fmt.Errorf("%w: range %d smaller than %d", ErrInvalidTarget, p.RangeMax, target)
	}
	if len(fixed) > target {
		return fmt.Errorf("%w: %d fixed numbers exceed target %d", ErrInvalidFixed, len(fixed), target)
	}
	seen := make(map[int]struct{}, len(fixed))
	for _, n := range fixed {
		if !p.Contains(n) {
			return fmt.Errorf("%w: %d outside [1, %d]", ErrInvalidFixed, n, p.RangeMax)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %d repeated", ErrInvalidFixed, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func isEven(n int) bool {
	return n%2 == 0
}

func remove(pool []int, n int) []int {
	if i := slices.Index(pool, n); i >= 0 {
		return slices.Delete(pool, i, i+1)
	}
	return pool
}
