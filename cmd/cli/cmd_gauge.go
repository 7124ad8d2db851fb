package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/namefreezers/weather-now/internal/gauge"
	"github.com/namefreezers/weather-now/internal/loadstate"
)

var (
	gaugeWidth    float64
	gaugeHeight   float64
	gaugeProgress float64
)

var gaugeCmd = &cobra.Command{
	Use:   "gauge",
	Short: "Print the forecast gauge outline",
	Long:  `Fetch the forecast and print the vertices of the temperature gauge polygon.`,
	RunE:  runGauge,
}

func init() {
	gaugeCmd.Flags().Float64Var(&gaugeWidth, "width", 320, "canvas width")
	gaugeCmd.Flags().Float64Var(&gaugeHeight, "height", 120, "canvas height")
	gaugeCmd.Flags().Float64Var(&gaugeProgress, "progress", 1, "reveal progress (0..1)")
	rootCmd.AddCommand(gaugeCmd)
}

func runGauge(cmd *cobra.Command, args []string) error {
	if gaugeWidth <= 0 || gaugeHeight <= 0 {
		return fmt.Errorf("width and height must be positive")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	repo := repoFrom(cmd)
	states := loadstate.Wrap(ctx, repo.ForecastData(ctx))
	go repo.Refresh(ctx) //nolint:errcheck // the outcome arrives on the stream

	for st := range states {
		if st.IsLoading() {
			continue
		}
		f, ok := st.Value()
		if !ok {
			return st.Err()
		}
		out := cmd.OutOrStdout()
		for _, p := range gauge.Outline(f.Temperatures(), gaugeWidth, gaugeHeight, gaugeProgress) {
			fmt.Fprintf(out, "%.2f,%.2f\n", p.X, p.Y)
		}
		return nil
	}
	return ctx.Err()
}
