package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/config"
	"github.com/namefreezers/weather-now/internal/repository"
	"github.com/namefreezers/weather-now/internal/weather"
)

type repoKey struct{}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "weather-now",
	Short: "weather-now - current weather and short-term forecast",
	Long: `weather-now fetches the current weather and the 24 hour forecast from
OpenWeatherMap (or the built-in mock) and prints each loading state as it
happens.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		logger := zap.NewNop()
		if verbose {
			if logger, err = zap.NewDevelopment(); err != nil {
				return fmt.Errorf("cannot initialize logger: %w", err)
			}
		}

		api, err := weather.BuildAPI(cfg, logger)
		if err != nil {
			return err
		}
		repo := repository.NewWeatherRepository(api, nil, logger)
		cmd.SetContext(context.WithValue(cmd.Context(), repoKey{}, repo))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log fetches to stderr")
}

func repoFrom(cmd *cobra.Command) repository.WeatherRepository {
	return cmd.Context().Value(repoKey{}).(repository.WeatherRepository)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
