package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/amedeedaboville/gix-of-theseus/pkg/cohort"
)

const (
	renderOpacity     = 0.6
	renderFullZoomPct = 100
)

// NewRenderCommand builds the `cohort render <cohorts.json>` command: the
// concrete "renderer interface" consumed by the embedding host (spec §6),
// decoupled from the engine — it only reads the public JSON schema.
func NewRenderCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{ //nolint:exhaustruct // cobra.Command fields default to zero.
		Use:   "render <cohorts.json>",
		Short: "Render cohorts.json as a stacked-area Ship-of-Theseus chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRender(args[0], outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "cohorts.html", "output HTML file")

	return cmd
}

func runRender(inPath, outPath string) error {
	raw, err := os.ReadFile(inPath) //nolint:gosec // operator-supplied path.
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", cohort.ErrIO, inPath, err)
	}

	var data cohort.CohortJSON

	if unmarshalErr := json.Unmarshal(raw, &data); unmarshalErr != nil {
		return fmt.Errorf("%w: parse %s: %v", cohort.ErrIO, inPath, unmarshalErr)
	}

	chart := buildStackedAreaChart(data)

	fd, err := os.Create(outPath) //nolint:gosec // operator-supplied path.
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", cohort.ErrIO, outPath, err)
	}
	defer fd.Close()

	if renderErr := chart.Render(fd); renderErr != nil {
		return fmt.Errorf("%w: render: %v", cohort.ErrIO, renderErr)
	}

	return nil
}

// buildStackedAreaChart stacks one series per cohort year, x-axis labeled by
// sample date, mirroring the teacher's burndown HistoryAnalyzer.GenerateChart.
func buildStackedAreaChart(data cohort.CohortJSON) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Ship of Theseus",
			Subtitle: "Surviving lines of code by introduction year",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "5px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: renderFullZoomPct}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Lines of code"}),
	)
	line.SetXAxis(data.TS)

	for i, label := range data.Labels {
		seriesData := make([]opts.LineData, len(data.TS))

		for j, count := range data.Data[i] {
			seriesData[j] = opts.LineData{Value: count}
		}

		line.AddSeries(
			label,
			seriesData,
			charts.WithLineChartOpts(opts.LineChart{Stack: "total"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(renderOpacity)}),
		)
	}

	return line
}
