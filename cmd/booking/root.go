package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/workspace-booking/internal/config"
	"github.com/example/workspace-booking/internal/logging"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "booking",
		Short:         "Desk, meeting room and equipment reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "read configuration from this env file instead of ./.env")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newWorkerCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newAvailabilityCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// load reads configuration and builds the process logger.
func (o *rootOptions) load() (config.Config, *slog.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if o.envFile != "" {
		cfg, err = config.LoadFile(o.envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(os.Stderr, cfg.LogLevel), nil
}
