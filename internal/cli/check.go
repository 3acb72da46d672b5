package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

type checkOptions struct {
	lat, lon    float64
	point       bool
	concurrency int
	jsonOut     bool
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [address...]",
		Short: "Resolve addresses or a point to a water safety verdict",
		Example: `  watersafe check "1600 Pennsylvania Ave NW, Washington, DC 20500"
  watersafe check --lat 38.8977 --lon -77.0365`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.point = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
			return runCheck(cmd, args, opts)
		},
	}
	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "latitude of the point to check")
	cmd.Flags().Float64Var(&opts.lon, "lon", 0, "longitude of the point to check")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 4, "maximum resolutions in flight")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print one JSON outcome per line")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	return cmd
}

// checkResult pairs an input with its outcome, in argument order.
type checkResult struct {
	label   string
	verdict domain.Verdict
	err     error
}

func checkInputs(args []string, opts *checkOptions) ([]domain.Input, error) {
	var inputs []domain.Input
	if opts.point {
		inputs = append(inputs, domain.Coordinates{Lat: opts.lat, Lon: opts.lon})
	}
	for _, a := range args {
		inputs = append(inputs, domain.Address(a))
	}
	if len(inputs) == 0 {
		return nil, errors.New("provide at least one address or --lat and --lon")
	}
	return inputs, nil
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	inputs, err := checkInputs(args, opts)
	if err != nil {
		return err
	}

	a, logger, err := oneShot(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close components", "error", err)
		}
	}()

	results := make([]checkResult, len(inputs))
	g, ctx := errgroup.WithContext(cmd.Context())
	if opts.concurrency > 0 {
		g.SetLimit(opts.concurrency)
	}
	for i, in := range inputs {
		g.Go(func() error {
			v, err := a.pipeline.Resolve(ctx, in)
			results[i] = checkResult{label: inputLabel(in), verdict: v, err: err}
			// A failed input never cancels the others.
			return nil
		})
	}
	_ = g.Wait()

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		err = writeCheckJSON(out, results)
	} else {
		err = writeCheckTable(out, results)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func inputLabel(in domain.Input) string {
	switch v := in.(type) {
	case domain.Address:
		return string(v)
	case domain.Coordinates:
		return v.String()
	default:
		return fmt.Sprint(in)
	}
}

func writeCheckTable(w io.Writer, results []checkResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tTIER\tVERDICT\tPWSID\tUTILITY")
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(tw, "%s\tERROR\t%s\t-\t%v\n", r.label, domain.KindOf(r.err), r.err)
			continue
		}
		u := r.verdict.Utility
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.label, r.verdict.Tier, r.verdict.Tier.Verdict(), u.SystemID, u.Name)
	}
	return tw.Flush()
}

type checkLine struct {
	Input   string          `json:"input"`
	State   string          `json:"state"`
	Verdict *domain.Verdict `json:"verdict,omitempty"`
	Error   *checkError     `json:"error,omitempty"`
}

type checkError struct {
	Stage   domain.Stage     `json:"stage,omitempty"`
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func writeCheckJSON(w io.Writer, results []checkResult) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		outcome := domain.OutcomeOf(r.verdict, r.err)
		line := checkLine{Input: r.label, State: outcome.State.String(), Verdict: outcome.Verdict}
		if f := outcome.Failure; f != nil {
			line.Error = &checkError{Stage: f.Stage, Kind: f.Kind, Message: f.Err.Error()}
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
