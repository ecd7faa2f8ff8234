package infra

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

var ErrMessageTooLarge = errors.New("message exceeds max size")

// MaxMsgSize bounds a single published event.
var MaxMsgSize = 256 * 1024

type MessageQueue interface {
	Enqueue(topic string, message []byte, options *EnqueueOptions) error
	Close()
}

type EnqueueOptions struct {
	// IdempotentKey is sent as the Nats-Msg-Id header so streams can drop duplicates.
	IdempotentKey string
}

type natsQueue struct {
	nc *nats.Conn
}

// NewNATSMessageQueue publishes on core NATS subjects over nc.
func NewNATSMessageQueue(nc *nats.Conn) MessageQueue {
	return &natsQueue{nc: nc}
}

func (q *natsQueue) Enqueue(topic string, message []byte, options *EnqueueOptions) error {
	if len(message) > MaxMsgSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(message))
	}
	msg := nats.NewMsg(topic)
	msg.Data = message
	if options != nil && options.IdempotentKey != "" {
		msg.Header.Set(nats.MsgIdHdr, options.IdempotentKey)
	}
	if err := q.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (q *natsQueue) Close() {
	if q.nc == nil {
		return
	}
	if err := q.nc.Drain(); err != nil {
		q.nc.Close()
	}
}
