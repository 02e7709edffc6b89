// v0
// cmd/venting-sim/curve.go
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/plugin"
)

func newCurveCmd() *cobra.Command {
	var from, to, step float64
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print the relative humidity to opening factor curve as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCurve(cmd.OutOrStdout(), from, to, step)
		},
	}
	cmd.Flags().Float64Var(&from, "from", 0, "first relative humidity, percent")
	cmd.Flags().Float64Var(&to, "to", 100, "last relative humidity, percent")
	cmd.Flags().Float64Var(&step, "step", 5, "relative humidity increment, percent")
	return cmd
}

func printCurve(w io.Writer, from, to, step float64) error {
	if step <= 0 {
		return fmt.Errorf("step must be > 0, got %v", step)
	}
	if to < from {
		return fmt.Errorf("to (%v) is below from (%v)", to, from)
	}
	if _, err := fmt.Fprintln(w, "rh,opening_factor"); err != nil {
		return err
	}
	n := int((to-from)/step + 1e-9)
	for i := 0; i <= n; i++ {
		rh := from + float64(i)*step
		if _, err := fmt.Fprintf(w, "%g,%.4f\n", rh, plugin.OpeningFactor(rh)); err != nil {
			return err
		}
	}
	return nil
}
