// Package cli implements the qc command line tool: offline scoring of
// sample files and submission to a running coffeeqc service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// ErrThreshold is returned when a score falls below --fail-under.
var ErrThreshold = errors.New("score below threshold")

// NewRootCommand builds the qc command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "qc",
		Short: "Coffee quality-control scoring",
		Long: `qc scores coffee QC form records: SCA cupping sheets, combined green
and cupping quality sheets, cupping evaluations and roast logs.

Records are read from YAML or JSON files. Use "qc score" to score them
locally or "qc submit" to send them to a running coffeeqc service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScoreCommand(), newKindsCommand(), newSubmitCommand())
	return root
}

// Execute runs the root command with os.Args and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
