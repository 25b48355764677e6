package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	"github.com/ismailopm12/coffeeqc/internal/domain/scoring"
)

type scoreOptions struct {
	glob      string
	format    string
	failUnder float64
}

func newScoreCommand() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score <kind> [files...]",
		Short: "Score records from YAML or JSON files",
		Example: `  qc score cupping samples/lot-12.yaml
  qc score quality --glob 'samples/**/*.json' --format json
  cat roast.yaml | qc score roast -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, opts, args[0], args[1:])
		},
	}
	cmd.Flags().StringVarP(&opts.glob, "glob", "g", "", "Glob of input files (supports **)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Output format (text|json)")
	cmd.Flags().Float64Var(&opts.failUnder, "fail-under", 0, "Fail when any score is below this value")
	return cmd
}

func runScore(cmd *cobra.Command, opts *scoreOptions, kindName string, paths []string) error {
	kind, err := intake.ParseKind(kindName)
	if err != nil {
		return err
	}
	renderer, err := NewRenderer(opts.format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	records, err := LoadAll(paths, opts.glob, cmd.InOrStdin())
	if err != nil {
		return err
	}

	results, below := ScoreRecords(cmd.Context(), scoring.NewEngine(), kind, records, opts.failUnder)
	if err := renderer.Render(cmd.OutOrStdout(), results); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if below > 0 {
		return fmt.Errorf("%w: %d record(s) under %.2f", ErrThreshold, below, opts.failUnder)
	}
	return nil
}

// ScoreRecords evaluates every record and counts scores under failUnder.
// A zero failUnder disables the threshold.
func ScoreRecords(ctx context.Context, engine scoring.Scorer, kind intake.Kind, records []Record, failUnder float64) ([]Result, int) {
	results := make([]Result, len(records))
	below := 0
	for i, rec := range records {
		res := Result{Source: rec.Source, ID: rec.ID}
		out, err := intake.Evaluate(ctx, engine, kind, rec.Fields)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Outcome = &out
			if failUnder > 0 && out.Score != nil && *out.Score < failUnder {
				below++
			}
		}
		results[i] = res
	}
	return results, below
}
