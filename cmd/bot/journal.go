package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eliseohh/edupagebot/internal/config"
	"github.com/eliseohh/edupagebot/internal/journal"
)

func newJournalCmd() *cobra.Command {
	var (
		limit int
		path  string
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print recent deliveries from the journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				var err error
				if path, err = config.LoadJournalPath(envFile); err != nil {
					return err
				}
			}
			if path == "" {
				return fmt.Errorf("journal is disabled: set EDUBOT_JOURNAL or pass --path")
			}

			db, err := journal.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of deliveries to show")
	cmd.Flags().StringVar(&path, "path", "", "journal file (defaults to EDUBOT_JOURNAL)")
	return cmd
}

func printEntries(out io.Writer, entries []journal.Entry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCHAT\tMETHOD\tSCREEN")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.DeliveredAt.Format(time.RFC3339), e.ChatID, e.Method, e.Screen)
	}
	return w.Flush()
}
