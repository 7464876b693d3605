package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/workspace-booking/internal/mq"
)

func newWorkerCmd(opts *rootOptions) *cobra.Command {
	var (
		prefetch       int
		commandTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume booking commands from RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openStorage(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStorage(s, logger)

			service := newBookingService(s, cfg, logger)
			worker := mq.NewWorker(mq.WorkerConfig{
				URL:            cfg.AMQPURL,
				Queue:          cfg.Queue,
				CommandTimeout: commandTimeout,
				Prefetch:       prefetch,
			}, mq.NewDispatcher(service, logger), logger)
			return worker.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&prefetch, "prefetch", 8, "maximum unacknowledged deliveries")
	cmd.Flags().DurationVar(&commandTimeout, "command-timeout", 10*time.Second, "time budget for handling one command")
	return cmd
}
