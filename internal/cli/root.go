package cli

import (
	"github.com/spf13/cobra"

	"github.com/soyeahso/wayfarer/internal/config"
	"github.com/soyeahso/wayfarer/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wayfarer",
		Short: "wayfarer: a multi-agent travel assistant",
		Long: "wayfarer answers travel questions with a supervisor that routes each turn\n" +
			"to flight, hotel and destination specialists backed by live travel data.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.wayfarer/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGatewayCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newMessageCmd())
	cmd.AddCommand(newThreadCmd())
	cmd.AddCommand(newAgentCmd())

	return cmd
}

// applyLogging rebuilds the logger from config unless --log-level was given.
func applyLogging(cfg config.Config) {
	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	log = logging.NewWithStyle(nil, level, cfg.Logging.ConsoleStyle)
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
