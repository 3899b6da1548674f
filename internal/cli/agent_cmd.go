package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/wayfarer/internal/config"
	"github.com/soyeahso/wayfarer/internal/domain"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Inspect the supervisor and specialists",
	}

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentInfoCmd())
	return cmd
}

// agentSettings maps an agent id to its config entry name.
func agentSettings(cfg *config.Config, id domain.AgentID) config.ResolvedAgent {
	if id == domain.AgentTeam {
		return cfg.Agent("supervisor")
	}
	return cfg.Agent(string(id))
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List addressable agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := buildStack(cmd.Context(), cfg, stackOptions{memoryStore: true})
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			for _, a := range st.runner.Agents() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s model=%s tools=%d\n", a.ID, a.Model, len(a.Tools))
			}
			return nil
		},
	}
}

func newAgentInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <agent-id>",
		Short: "Show model settings and tools of an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAgentID(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := buildStack(cmd.Context(), cfg, stackOptions{memoryStore: true})
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			info, ok := st.runner.Describe(id)
			if !ok {
				return fmt.Errorf("agent not found: %s", id)
			}
			ra := agentSettings(&cfg, id)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Agent: %s\n", info.ID)
			fmt.Fprintf(out, "  Model:     %s\n", info.Model)
			if len(ra.Fallbacks) > 0 {
				fmt.Fprintf(out, "  Fallbacks: %s\n", strings.Join(ra.Fallbacks, ", "))
			}
			fmt.Fprintf(out, "  MaxTokens: %d\n", ra.MaxTokens)
			if ra.Temperature != nil {
				fmt.Fprintf(out, "  Temp:      %.2f\n", *ra.Temperature)
			}
			if id == domain.AgentTeam {
				fmt.Fprintf(out, "  MaxHops:   %d\n", cfg.Team.MaxHops)
			}
			fmt.Fprintf(out, "  Tools:\n")
			for _, t := range info.Tools {
				fmt.Fprintf(out, "    - %s\n", t)
			}
			return nil
		},
	}
}
