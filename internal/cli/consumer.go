package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/picklepass/internal/config"
	"github.com/iliyamo/picklepass/internal/logger"
	"github.com/iliyamo/picklepass/internal/queue"
)

func NewConsumerCmd() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "consumer",
		Short: "Consume booking confirmations and append them to a log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Env); err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = queue.StartBookingConsumer(ctx, cfg.RabbitURL, logPath)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&logPath, "log-file", queue.DefaultLogPath, "file confirmed bookings are appended to")
	return cmd
}
