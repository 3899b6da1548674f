package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/wayfarer/internal/config"
	"github.com/soyeahso/wayfarer/internal/llm"
	"github.com/soyeahso/wayfarer/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show wayfarer status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wayfarer %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n", paths.Data)
			fmt.Fprintf(out, "Threads: %s\n", paths.Threads)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:  not found (using defaults)")
			}
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Server:  port=%d bind=%s tls=%v timeout=%ds\n",
				cfg.Server.Port, cfg.Server.Bind, cfg.Server.TLS.Enabled, cfg.Server.RequestTimeoutSeconds)
			fmt.Fprintf(out, "Session: store=%s ttl=%dm\n", cfg.Session.Store, cfg.Session.TTLMinutes)

			registry := llm.NewRegistryFromConfig(cfg.Models, log)
			if providers := registry.List(); len(providers) > 0 {
				fmt.Fprintf(out, "LLM:     %s (default %s)\n", strings.Join(providers, ", "), cfg.Models.Default)
			} else {
				fmt.Fprintln(out, "LLM:     (none configured)")
			}
			fmt.Fprintf(out, "Model:   %s\n", cfg.Agents.Defaults.Model)

			fmt.Fprintf(out, "Amadeus: %s credentials=%s\n", cfg.Amadeus.BaseURL,
				setOrMissing(cfg.Amadeus.ClientID != "" && cfg.Amadeus.ClientSecret != ""))
			fmt.Fprintf(out, "Search:  %s key=%s\n", cfg.Search.BaseURL, setOrMissing(cfg.Search.APIKey != ""))
			fmt.Fprintf(out, "Metrics: %v\n", cfg.Telemetry.Metrics)

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}

func setOrMissing(ok bool) string {
	if ok {
		return "set"
	}
	return "missing"
}
