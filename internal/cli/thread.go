package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newThreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thread",
		Short: "Inspect conversation threads in the SQLite store",
	}

	cmd.AddCommand(newThreadListCmd())
	cmd.AddCommand(newThreadShowCmd())
	cmd.AddCommand(newThreadSearchCmd())
	return cmd
}

func newThreadListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List threads, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, db, err := openThreadStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := ts.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no threads")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMESSAGES\tUPDATED")
			for _, t := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", t.ID, t.MessageCount, t.UpdatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func newThreadShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Print a thread's history and routing state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, db, err := openThreadStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			t, err := ts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(t)
			}

			fmt.Fprintf(out, "Thread %s (created %s)\n", t.ID, t.CreatedAt.Local().Format(time.DateTime))
			if t.Routing.Next != "" {
				fmt.Fprintf(out, "Routing: next=%s reasoning=%q\n", t.Routing.Next, t.Routing.Reasoning)
			}
			for _, m := range t.Messages {
				who := string(m.Role)
				if m.Name != "" {
					who += "/" + m.Name
				}
				fmt.Fprintf(out, "\n[%s] %s\n%s\n", m.Timestamp.Local().Format(time.TimeOnly), who, strings.TrimSpace(m.Content))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the thread as JSON")
	return cmd
}

func newThreadSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across stored messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, db, err := openThreadStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			hits, err := ts.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "THREAD\tROLE\tSNIPPET")
			for _, h := range hits {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", h.ThreadID, h.Role, h.Snippet)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of matches")
	return cmd
}
