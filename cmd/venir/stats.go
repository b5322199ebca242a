package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"venir/internal/statsdb"
)

type bucketTotals struct {
	Bucket string `json:"bucket"`
	Runs   int    `json:"runs"`
	Steps  int64  `json:"rlimit_count"`
}

// newStatsCmd reads back what --stats-db recorded.
func newStatsCmd(stderr io.Writer) *cobra.Command {
	var dbPath, bucket string
	cmd := &cobra.Command{
		Use:   "stats [run-id]",
		Short: "Show recorded verification statistics",
		Long: `stats prints one recorded run by ID, or with --bucket the number of runs
and solver steps recorded for a bucket across all runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return usageError{fmt.Errorf("--db is required")}
			}
			var id uuid.UUID
			switch {
			case bucket != "" && len(args) > 0:
				return usageError{fmt.Errorf("give either a run id or --bucket, not both")}
			case bucket == "" && len(args) == 0:
				return usageError{fmt.Errorf("a run id or --bucket is required")}
			case len(args) == 1:
				var err error
				if id, err = uuid.Parse(args[0]); err != nil {
					return usageError{fmt.Errorf("invalid run id %q: %w", args[0], err)}
				}
			}

			store, err := statsdb.Open(dbPath)
			if err != nil {
				fmt.Fprintf(stderr, "venir: %v\n", err)
				return exitError{1}
			}
			defer store.Close()

			var payload any
			if bucket != "" {
				runs, steps, err := store.Totals(cmd.Context(), bucket)
				if err != nil {
					fmt.Fprintf(stderr, "venir: %v\n", err)
					return exitError{1}
				}
				payload = bucketTotals{Bucket: bucket, Runs: runs, Steps: steps}
			} else {
				run, err := store.Load(cmd.Context(), id)
				if err != nil {
					fmt.Fprintf(stderr, "venir: %v\n", err)
					return exitError{1}
				}
				payload = run
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "statistics database written by --stats-db")
	cmd.Flags().StringVar(&bucket, "bucket", "", "sum the runs of this bucket instead of showing one run")
	return cmd
}
