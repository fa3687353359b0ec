package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	sqlitestorage "twitchDeck/internal/infrastructure/persistence/sqlite"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath string
		limit  int
		raids  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent key presses or raids recorded by the plugin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sqlitestorage.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if raids {
				return printRaids(cmd, store, limit)
			}
			return printActions(cmd, store, limit)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "data/twitchdeck.db", "plugin database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	cmd.Flags().BoolVar(&raids, "raids", false, "list raids instead of actions")
	return cmd
}

func printActions(cmd *cobra.Command, store *sqlitestorage.Store, limit int) error {
	recs, err := store.ListActions(cmd.Context(), limit)
	if err != nil {
		return err
	}
	p := newPrinter(cmd)
	if p.jsonMode {
		return p.JSON(recs)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tRESULT\tDETAIL")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CreatedAt.Local().Format(time.DateTime), r.Action, r.Result, r.Detail)
	}
	return tw.Flush()
}

func printRaids(cmd *cobra.Command, store *sqlitestorage.Store, limit int) error {
	recs, err := store.ListRaids(cmd.Context(), limit)
	if err != nil {
		return err
	}
	p := newPrinter(cmd)
	if p.jsonMode {
		return p.JSON(recs)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRAIDER\tVIEWERS\tSHOUTOUT")
	for _, r := range recs {
		shout := "-"
		if !r.ShoutedOutAt.IsZero() {
			shout = r.ShoutedOutAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Raider.ReceivedAt.Local().Format(time.DateTime), r.Raider.Name(), r.Raider.Viewers, shout)
	}
	return tw.Flush()
}
