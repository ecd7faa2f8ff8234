package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/infra"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

func newEventsCmd(flags *rootFlags) *cobra.Command {
	var (
		subject string
		logFile string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print history events published on NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if subject == "" {
				subject = cfg.Nats.SubjectPrefix + ".>"
				if cfg.Nats.SubjectPrefix == "" {
					subject = ">"
				}
			}

			out := cmd.OutOrStdout()
			if logFile != "" {
				if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
					return fmt.Errorf("create log directory: %w", err)
				}
				f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				out = io.MultiWriter(out, f)
			}

			nc, err := infra.ConnectNATS(cmd.Context(), cfg.Nats)
			if err != nil {
				return fmt.Errorf("connect nats: %w", err)
			}
			defer nc.Close()

			sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				logger.Debug("Received event", "subject", msg.Subject, "bytes", len(msg.Data))
				fmt.Fprintf(out, "%s %s\n", msg.Subject, msg.Data)
			})
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", subject, err)
			}
			defer sub.Unsubscribe()
			logger.Info("Subscribed", "subject", subject)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject to subscribe to (default: <prefix>.>)")
	cmd.Flags().StringVar(&logFile, "log", "", "Also append events to this file")
	return cmd
}
