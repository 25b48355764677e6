package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
)

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the supported scoring kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), DescribeKinds())
			return err
		},
	}
}

// DescribeKinds lists each kind with its ranking and grade bands.
func DescribeKinds() string {
	var b strings.Builder
	for _, k := range intake.Kinds {
		ranked := "ranked"
		if !k.Ranked() {
			ranked = "unranked"
		}
		fmt.Fprintf(&b, "%-11s %s\n", k, ranked)

		p := k.Profile()
		if p == nil {
			continue
		}
		last := len(p.Bands) - 1
		for i, band := range p.Bands {
			if i < last {
				fmt.Fprintf(&b, "  >= %-4.0f %s\n", band.Min, band.Grade)
			} else if i > 0 {
				fmt.Fprintf(&b, "  <  %-4.0f %s\n", p.Bands[i-1].Min, band.Grade)
			}
		}
	}
	return b.String()
}
