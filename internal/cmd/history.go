package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/attune/internal/output/sqlite"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		counts bool
		since  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent analyses from the sqlite history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfg.Output.DBPath
			overrideString(cmd, "db", &path)
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("history database %s: %w", path, err)
			}
			store, err := sqlite.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			if counts {
				var from time.Time
				if since > 0 {
					from = time.Now().Add(-since)
				}
				c, err := store.Counts(cmd.Context(), from)
				if err != nil {
					return err
				}
				return enc.Encode(c)
			}

			analyses, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, an := range analyses {
				if err := enc.Encode(an); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of analyses to show, newest first")
	cmd.Flags().String("db", "", "database path (overrides ATTUNE_DB_PATH)")
	cmd.Flags().BoolVar(&counts, "counts", false, "print counts per final emotion instead")
	cmd.Flags().DurationVar(&since, "since", 0, "with --counts, only count analyses newer than this")
	return cmd
}
