package dream

import (
	"fmt"
	"time"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
)

// Project turns the suggestion for one lottery into a combination priced at
// the profile's first price entry.
func Project(in *Interpretation, t enum.LotteryType, catalog lottery.Catalog, now time.Time) (lottery.Combination, error) {
	p, err := catalog.Get(t)
	if err != nil {
		return lottery.Combination{}, err
	}
	numbers := in.Suggestions[t]
	if len(numbers) == 0 {
		return lottery.Combination{}, fmt.Errorf("%w: %s", ErrNoSuggestion, t)
	}
	c := lottery.NewCombination(p, numbers, p.Prices[0].Price, enum.SourceDream, now)
	if err := c.Validate(p); err != nil {
		return lottery.Combination{}, err
	}
	return c, nil
}
