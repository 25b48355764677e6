package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
)

// ErrSubmitFailed is returned when at least one record was not accepted.
var ErrSubmitFailed = errors.New("submission failed")

const (
	defaultServiceURL    = "http://localhost:9080"
	defaultSubmitTimeout = 10 * time.Second
)

type submitOptions struct {
	glob    string
	url     string
	workers int
	timeout time.Duration
	format  string
}

func newSubmitCommand() *cobra.Command {
	opts := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit <kind> [files...]",
		Short: "Submit records to a running coffeeqc service",
		Example: `  qc submit cupping --glob 'harvest-2026/**/*.yaml'
  qc submit roast roast-log.json --url http://qc.internal:9080 --workers 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, opts, args[0], args[1:])
		},
	}
	cmd.Flags().StringVarP(&opts.glob, "glob", "g", "", "Glob of input files (supports **)")
	cmd.Flags().StringVar(&opts.url, "url", defaultServiceURL, "Base URL of the service")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "Concurrent requests")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultSubmitTimeout, "Per-request timeout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Output format (text|json)")
	return cmd
}

func runSubmit(cmd *cobra.Command, opts *submitOptions, kindName string, paths []string) error {
	kind, err := intake.ParseKind(kindName)
	if err != nil {
		return err
	}
	if opts.format != FormatText && opts.format != FormatJSON {
		return fmt.Errorf("unknown output format: %s", opts.format)
	}
	records, err := LoadAll(paths, opts.glob, cmd.InOrStdin())
	if err != nil {
		return err
	}

	client := NewClient(opts.url, opts.timeout)
	results, summary := client.SubmitAll(cmd.Context(), string(kind), records, opts.workers)

	out := cmd.OutOrStdout()
	if opts.format == FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			line := fmt.Sprintf("%-9s %s", r.Status, r.Source)
			if r.ID != "" {
				line += " " + r.ID
			}
			if r.Error != "" {
				line += ": " + r.Error
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "accepted %d, duplicate %d, failed %d\n", summary.Accepted, summary.Duplicate, summary.Failed)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d records", ErrSubmitFailed, summary.Failed, len(records))
	}
	return nil
}
