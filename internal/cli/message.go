package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/domain"
)

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send messages to the agents",
	}

	cmd.AddCommand(newMessageSendCmd())
	return cmd
}

// parseAgentID accepts an agent id or its plural URL segment.
func parseAgentID(s string) (domain.AgentID, error) {
	switch strings.ToLower(s) {
	case "", "team":
		return domain.AgentTeam, nil
	case "flight", "flights":
		return domain.AgentFlight, nil
	case "hotel", "hotels":
		return domain.AgentHotel, nil
	case "destination", "destinations":
		return domain.AgentDestination, nil
	}
	return "", fmt.Errorf("%w: %q (want team, flight, hotel or destination)", agent.ErrUnknownAgent, s)
}

func newMessageSendCmd() *cobra.Command {
	var (
		agentName string
		threadID  string
		events    bool
	)

	cmd := &cobra.Command{
		Use:   "send [query]",
		Short: "Run one turn in process and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAgentID(agentName)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyLogging(cfg)
			if threadID != "" && cfg.Session.Store != "sqlite" {
				log.Warn().Msg("session.store is memory; --thread only resolves threads created in this process")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := buildStack(ctx, cfg, stackOptions{})
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			var onEvent agent.EventFunc
			if events {
				errOut := cmd.ErrOrStderr()
				onEvent = func(ev agent.Event) {
					switch ev.Type {
					case agent.EventRoute:
						fmt.Fprintf(errOut, "→ %s (%s)\n", ev.Agent, ev.Reasoning)
					case agent.EventToolStart:
						fmt.Fprintf(errOut, "  %s: %s\n", ev.Agent, ev.Tool)
					case agent.EventToolResult:
						if ev.Error != "" {
							fmt.Fprintf(errOut, "  %s failed: %s\n", ev.Tool, ev.Error)
						}
					}
				}
			}

			res, err := st.runner.Run(ctx, id, agent.Request{
				Query:    strings.Join(args, " "),
				ThreadID: threadID,
			}, onEvent)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Response)
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\n[agent=%s thread=%s messages=%d duration=%s]\n",
				res.AgentID, res.ThreadID, res.MessagesCount, res.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "team", "agent to ask (team, flight, hotel, destination)")
	cmd.Flags().StringVar(&threadID, "thread", "", "continue an existing thread")
	cmd.Flags().BoolVar(&events, "events", false, "print routing and tool progress to stderr")

	return cmd
}
