package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/namefreezers/weather-now/internal/gauge"
	"github.com/namefreezers/weather-now/internal/loadstate"
	"github.com/namefreezers/weather-now/internal/model"
	"github.com/namefreezers/weather-now/internal/repository"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current weather",
	Long:  `Fetch the current weather once and print every loading state until it settles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repoFrom(cmd)
		return watch(cmd.Context(), cmd.OutOrStdout(), repo.CurrentData, repo, formatCurrent)
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show the 24 hour forecast",
	Long:  `Fetch the forecast once and print every loading state until it settles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repoFrom(cmd)
		return watch(cmd.Context(), cmd.OutOrStdout(), repo.ForecastData, repo, formatForecast)
	},
}

func init() {
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(forecastCmd)
}

// watch subscribes to one repository stream, triggers a refresh and prints
// each state until the stream is Loaded or Error. An Error state is also
// returned so the process exits non-zero.
func watch[T any](
	ctx context.Context,
	w io.Writer,
	subscribe func(context.Context) <-chan loadstate.Event[T],
	repo repository.WeatherRepository,
	format func(T) string,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := loadstate.Wrap(ctx, subscribe(ctx))
	go repo.Refresh(ctx) //nolint:errcheck // the outcome arrives on the stream

	for st := range states {
		switch st.Kind() {
		case loadstate.Loading:
			fmt.Fprintln(w, "Loading...")
		case loadstate.Loaded:
			v, _ := st.Value()
			fmt.Fprintln(w, format(v))
			return nil
		case loadstate.Error:
			fmt.Fprintf(w, "Error: %v\n", st.Err())
			return st.Err()
		}
	}
	return ctx.Err()
}

var title = cases.Title(language.English)

func formatCurrent(c model.CurrentWeather) string {
	t := model.Celsius(c.Temp.Value)
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", title.String(c.Desc), c.Weather)
	fmt.Fprintf(&b, "  Temperature: %.1f°C  max %.1f°C  min %.1f°C\n",
		t, model.Celsius(c.Temp.Max), model.Celsius(c.Temp.Min))
	fmt.Fprintf(&b, "  Wind:        %.1f m/s\n", c.Wind.Speed)
	fmt.Fprintf(&b, "  Colour:      %s", gauge.TemperatureColor(t).Hex())
	return b.String()
}

func formatForecast(f model.WeatherForecast) string {
	var b strings.Builder
	for i, e := range f.List {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %6.1f°C  %-12s %s",
			e.DateTime.Local().Format("Mon 15:04"),
			model.Celsius(e.Temp.Value),
			e.Weather,
			title.String(e.Desc),
		)
	}
	return b.String()
}
