package events

import (
	"encoding/json"
	"strings"

	"github.com/fystack/lottery-simulator/pkg/infra"
)

// Emitter announces changes to the history log.
type Emitter interface {
	EmitHistorySaved(event HistorySavedEvent) error
	EmitHistoryCleared(event HistoryClearedEvent) error
	Close()
}

type emitter struct {
	queue         infra.MessageQueue
	subjectPrefix string
}

func NewEmitter(queue infra.MessageQueue, subjectPrefix string) Emitter {
	return &emitter{
		queue:         queue,
		subjectPrefix: strings.TrimSuffix(subjectPrefix, "."),
	}
}

func (e *emitter) subject(name string) string {
	if e.subjectPrefix == "" {
		return name
	}
	return e.subjectPrefix + "." + name
}

func (e *emitter) EmitHistorySaved(event HistorySavedEvent) error {
	event.Type = TypeHistorySaved
	return e.emit(SubjectHistorySaved, event.BatchID, event)
}

func (e *emitter) EmitHistoryCleared(event HistoryClearedEvent) error {
	event.Type = TypeHistoryCleared
	return e.emit(SubjectHistoryCleared, "", event)
}

func (e *emitter) emit(subject, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return e.queue.Enqueue(e.subject(subject), data, &infra.EnqueueOptions{IdempotentKey: key})
}

func (e *emitter) Close() {
	if e.queue != nil {
		e.queue.Close()
	}
}

type noopEmitter struct{}

// NewNoopEmitter is used when event publishing is disabled.
func NewNoopEmitter() Emitter { return noopEmitter{} }

func (noopEmitter) EmitHistorySaved(HistorySavedEvent) error     { return nil }
func (noopEmitter) EmitHistoryCleared(HistoryClearedEvent) error { return nil }
func (noopEmitter) Close()                                       {}
