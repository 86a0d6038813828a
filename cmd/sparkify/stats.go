// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sparkify/internal/models"
	"github.com/tomtom215/sparkify/internal/sink"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts per star schema table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			target, err := sink.Open(ctx, &opts.cfg.Database)
			if err != nil {
				return err
			}
			defer closeTarget(target)

			if err := target.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}

			counts, err := target.GetRecordCounts(ctx)
			if err != nil {
				return fmt.Errorf("count rows: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tROWS")
			for _, table := range models.StarTables {
				fmt.Fprintf(w, "%s\t%d\n", table, counts[table])
			}
			return w.Flush()
		},
	}
}
