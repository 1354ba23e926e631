package resultexport

import (
	"bytes"
	"fmt"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette holds the colors of rendered charts.
type Palette struct {
	Background drawing.Color
	Line       drawing.Color
	Dot        drawing.Color
	Text       drawing.Color
}

// DefaultPalette is a light theme.
var DefaultPalette = Palette{
	Background: drawing.ColorWhite,
	Line:       drawing.ColorFromHex("1f6feb"),
	Dot:        drawing.ColorFromHex("d29922"),
	Text:       drawing.ColorFromHex("24292f"),
}

// ProgressionChart draws the record progression of an event as a PNG line
// chart, best values at the top. history must be ordered oldest first.
func ProgressionChart(ev resultdomain.Event, metric resultdomain.Metric, region resultdomain.Region, history []resultdomain.Result, palette Palette) ([]byte, error) {
	if len(history) < 2 {
		return renderPlaceholder(fmt.Sprintf("Not enough %s %s records in %s to chart", ev.Name, metric, region), palette)
	}

	xValues := make([]time.Time, len(history))
	yValues := make([]float64, len(history))
	for i, r := range history {
		xValues[i] = r.Date
		yValues[i] = plotValue(ev, metric, metric.Value(r))
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s %s records (%s)", ev.Name, metric, region),
		Width:  800,
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.Text,
		},
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat(time.DateOnly),
			Style: chart.Style{
				FontColor: palette.Text,
			},
		},
		YAxis: chart.YAxis{
			Name: axisName(ev),
			Style: chart.Style{
				FontColor: palette.Text,
			},
			Range: &chart.ContinuousRange{
				Descending: ev.Direction() == resultdomain.LowerIsBetter,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Record",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: palette.Line,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    palette.Dot,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render progression chart: %w", err)
	}
	return buf.Bytes(), nil
}

// plotValue converts a stored value into the unit shown on the chart.
func plotValue(ev resultdomain.Event, metric resultdomain.Metric, v resultdomain.Attempt) float64 {
	switch {
	case ev.Format == resultdomain.FormatTime:
		return float64(v) / 100
	case metric == resultdomain.MetricAverage:
		return float64(v) / float64(ev.AverageScale())
	default:
		return float64(v)
	}
}

func axisName(ev resultdomain.Event) string {
	switch ev.Format {
	case resultdomain.FormatTime:
		return "Seconds"
	case resultdomain.FormatNumber:
		return "Moves"
	default:
		return "Points"
	}
}

func renderPlaceholder(msg string, palette Palette) ([]byte, error) {
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(10.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
