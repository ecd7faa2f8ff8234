package events

import "github.com/fystack/lottery-simulator/internal/lottery"

const (
	SubjectHistorySaved   = "history.saved"
	SubjectHistoryCleared = "history.cleared"

	TypeHistorySaved   = "history_saved"
	TypeHistoryCleared = "history_cleared"
)

// HistorySavedEvent carries one batch appended to the history log.
type HistorySavedEvent struct {
	Type         string                `json:"type"`
	BatchID      string                `json:"batch_id"`
	Combinations []lottery.Combination `json:"combinations"`
	HistorySize  int                   `json:"history_size"`
	Timestamp    int64                 `json:"timestamp"`
}

type HistoryClearedEvent struct {
	Type      string `json:"type"`
	Removed   int    `json:"removed"`
	Timestamp int64  `json:"timestamp"`
}
