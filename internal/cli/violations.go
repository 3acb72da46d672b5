package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newViolationsCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "violations <pwsid>",
		Short: "List the most recent compliance records for a water system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := oneShot(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Warn("close components", "error", err)
				}
			}()

			records, err := a.pipeline.Violations(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			if len(records) == 0 {
				fmt.Fprintf(out, "no compliance records for %s\n", args[0])
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BEGIN\tEND\tSTATUS\tHEALTH\tDESCRIPTION")
			for _, r := range records {
				end := "open"
				if r.PeriodEnd != nil {
					end = r.PeriodEnd.Format("2006-01-02")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
					r.PeriodStart.Format("2006-01-02"), end, r.Status, r.HealthBased, r.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print records as JSON")
	return cmd
}
