package infra

import (
	"context"
	"errors"
	"time"

	"github.com/fystack/lottery-simulator/pkg/common/config"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/retry"
	"github.com/nats-io/nats.go"
)

// ConnectNATS dials NATS, retrying with backoff until ctx is done.
func ConnectNATS(ctx context.Context, natsConfig config.NatsConfig) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Connect(ctx, func() error {
		var err error
		nc, err = GetNATSConnection(natsConfig)
		if errors.Is(err, nats.ErrAuthorization) {
			return retry.Permanent(err)
		}
		return err
	}, retry.Config{
		OnRetry: func(err error, next time.Duration) {
			logger.Warn("NATS not ready, retrying", "url", natsConfig.URL, "next", next, "error", err)
		},
	})
	if err != nil {
		return nil, err
	}
	return nc, nil
}

func GetNATSConnection(natsConfig config.NatsConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("lottery-simulator"),
		nats.MaxReconnects(-1), // retry forever
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("Disconnected from NATS", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ErrorHandler(NatsErrHandler),
	}
	if natsConfig.Username != "" {
		opts = append(opts, nats.UserInfo(natsConfig.Username, natsConfig.Password))
	}

	url := natsConfig.URL
	if url == "" {
		url = nats.DefaultURL
	}
	return nats.Connect(url, opts...)
}

func NatsErrHandler(_ *nats.Conn, sub *nats.Subscription, natsErr error) {
	if errors.Is(natsErr, nats.ErrSlowConsumer) && sub != nil {
		pending, _, err := sub.Pending()
		if err != nil {
			logger.Error("Error getting pending messages", "error", err)
			return
		}
		logger.Error("Falling behind with pending messages on subject", "pending", pending, "subject", sub.Subject)
		return
	}
	logger.Error("NATS error", "error", natsErr)
}
