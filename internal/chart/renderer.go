package chart

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"StockRanker/internal/calculator"
	"StockRanker/internal/model"
)

// Chart styles.
const (
	StyleLine   = "line"
	StyleCandle = "candle"
)

// ErrNoData is returned when a series has nothing to draw.
var ErrNoData = errors.New("chart: series has no bars")

// Renderer writes one chart image per ranked symbol.
type Renderer interface {
	Render(series model.PriceSeries, title, path string) error
}

// Options controls image layout.
type Options struct {
	Style          string
	MovingAverages []int
	Width, Height  vg.Length
	DPI            int
	Theme          Theme
}

// PlotRenderer draws PNG charts with gonum/plot.
type PlotRenderer struct {
	opts Options
}

// NewPlotRenderer returns a renderer with unset options filled in.
func NewPlotRenderer(opts Options) *PlotRenderer {
	if opts.Style == "" {
		opts.Style = StyleLine
	}
	if opts.Width == 0 {
		opts.Width = 12 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 6 * vg.Inch
	}
	if opts.DPI == 0 {
		opts.DPI = 150
	}
	if opts.Theme.Background == nil {
		opts.Theme = Dark
	}
	return &PlotRenderer{opts: opts}
}

// Render draws series and saves it as a PNG at path.
func (r *PlotRenderer) Render(series model.PriceSeries, title, path string) error {
	if len(series.Bars) == 0 {
		return ErrNoData
	}
	p, err := r.build(series, title)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(r.opts.Width, r.opts.Height), vgimg.UseDPI(r.opts.DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write chart %s: %w", path, err)
	}
	return f.Close()
}

func (r *PlotRenderer) build(series model.PriceSeries, title string) (*plot.Plot, error) {
	t := r.opts.Theme
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Close"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	applyTheme(p, t)

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = t.Grid
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(grid)

	switch r.opts.Style {
	case StyleCandle:
		p.Add(&candles{bars: series.Bars, up: t.Up, down: t.Down})
	case StyleLine:
		line, err := plotter.NewLine(closeXYs(series.Bars))
		if err != nil {
			return nil, fmt.Errorf("close line: %w", err)
		}
		line.LineStyle.Color = t.Line
		line.LineStyle.Width = vg.Points(1.2)
		p.Add(line)
	default:
		return nil, fmt.Errorf("chart: unknown style %q", r.opts.Style)
	}

	for i, period := range r.opts.MovingAverages {
		sma, err := calculator.CalculateSMASeries(series.Bars, period)
		if err != nil {
			continue // shorter than the period
		}
		xys := make(plotter.XYs, len(sma))
		for j, v := range sma {
			xys[j] = plotter.XY{X: unix(series.Bars[j+period-1]), Y: v}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			continue // non-finite closes inside the window
		}
		line.LineStyle.Color = t.MovingAverages[i%len(t.MovingAverages)]
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("SMA %d", period), line)
	}
	return p, nil
}

// closeXYs keeps only finite closes.
func closeXYs(bars []model.OHLCV) plotter.XYs {
	xys := make(plotter.XYs, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: unix(b), Y: b.Close})
	}
	return xys
}

func applyTheme(p *plot.Plot, t Theme) {
	p.BackgroundColor = t.Background
	p.Title.TextStyle.Color = t.Foreground
	p.Legend.TextStyle.Color = t.Foreground
	p.Legend.Top = true
	p.Legend.Left = true
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = t.Foreground
		ax.Label.TextStyle.Color = t.Foreground
		ax.Tick.Label.Color = t.Foreground
		ax.Tick.LineStyle.Color = t.Foreground
	}
}
