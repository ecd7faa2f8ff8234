package history

import (
	"slices"

	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/pkg/common/constant"
)

// Log is the bounded newest-first list of saved combinations.
// It is not safe for concurrent use; callers serialize access.
type Log struct {
	capacity int
	entries  []lottery.Combination
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = constant.DefaultHistoryCapacity
	}
	return &Log{capacity: capacity}
}

// Append puts batch in front of the existing entries, keeping batch order,
// and drops the oldest entries beyond capacity.
func (l *Log) Append(batch ...lottery.Combination) {
	merged := make([]lottery.Combination, 0, min(len(batch)+len(l.entries), l.capacity))
	merged = append(merged, batch[:min(len(batch), l.capacity)]...)
	if room := l.capacity - len(merged); room > 0 {
		merged = append(merged, l.entries[:min(room, len(l.entries))]...)
	}
	l.entries = merged
}

// Replace swaps in a loaded snapshot, truncated to capacity.
func (l *Log) Replace(entries []lottery.Combination) {
	l.entries = slices.Clone(entries[:min(len(entries), l.capacity)])
}

func (l *Log) Clear() {
	l.entries = nil
}

// Entries returns a copy, newest first.
func (l *Log) Entries() []lottery.Combination {
	out := make([]lottery.Combination, len(l.entries))
	for i, c := range l.entries {
		c.Numbers = slices.Clone(c.Numbers)
		out[i] = c
	}
	return out
}

func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) Capacity() int {
	return l.capacity
}
