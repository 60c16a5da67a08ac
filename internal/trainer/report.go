package trainer

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"
)

// movingAverageWindow smooths the reward curve in the report.
const movingAverageWindow = 10

// WriteRewardReport renders an HTML reward curve over the collected
// episodes: raw per-episode reward and a moving average.
func WriteRewardReport(path string, results []EpisodeResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no episodes to report")
	}

	labels := make([]string, len(results))
	raw := make([]opts.LineData, len(results))
	smoothed := make([]opts.LineData, len(results))

	rewards := make([]float64, len(results))
	for i, r := range results {
		rewards[i] = r.Reward
	}
	for i := range results {
		labels[i] = fmt.Sprintf("%d", i+1)
		raw[i] = opts.LineData{Value: rewards[i]}

		lo := i - movingAverageWindow + 1
		if lo < 0 {
			lo = 0
		}
		smoothed[i] = opts.LineData{Value: stat.Mean(rewards[lo:i+1], nil)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Training rewards", Width: "1100px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Episode reward",
			Subtitle: fmt.Sprintf("%d episodes", len(results)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "reward"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("reward", raw)
	line.AddSeries(fmt.Sprintf("avg(%d)", movingAverageWindow), smoothed,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
