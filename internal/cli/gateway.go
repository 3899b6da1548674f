package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/gateway"
)

func newGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Manage the wayfarer HTTP API server",
	}

	cmd.AddCommand(newGatewayRunCmd())
	return cmd
}

func newGatewayRunCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			applyLogging(cfg)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := buildStack(ctx, cfg, stackOptions{telemetry: true})
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			janitor := &agent.Janitor{
				Store:    st.store,
				TTL:      time.Duration(cfg.Session.TTLMinutes) * time.Minute,
				Interval: time.Duration(cfg.Session.SweepSeconds) * time.Second,
				Locks:    st.runner.Locks(),
				Hooks:    st.hooks,
				Metrics:  st.metrics,
				Log:      log.Sub("janitor"),
			}
			go janitor.Run(ctx)

			log.Info().
				Str("store", cfg.Session.Store).
				Int("ttlMinutes", cfg.Session.TTLMinutes).
				Int("agents", len(st.runner.Agents())).
				Msg("agents ready")

			opts := []gateway.ServerOption{
				gateway.WithHooks(st.hooks),
				gateway.WithMetricsEndpoint(cfg.Telemetry.Metrics),
			}
			if st.metrics != nil {
				opts = append(opts, gateway.WithMetrics(st.metrics))
			}
			return gateway.New(cfg.Server, st.runner, log, opts...).Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
