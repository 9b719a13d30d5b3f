package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"StockRanker/internal/model"
)

// candles draws OHLC bars as candlesticks. X values are unix seconds.
type candles struct {
	bars     []model.OHLCV
	up, down color.Color
}

func (c *candles) Plot(dc draw.Canvas, plt *plot.Plot) {
	if len(c.bars) == 0 {
		return
	}
	trX, trY := plt.Transforms(&dc)

	body := vg.Points(4)
	if n := len(c.bars); n > 1 {
		span := trX(unix(c.bars[n-1])) - trX(unix(c.bars[0]))
		body = span / vg.Length(n-1) * 0.7
	}
	if body < vg.Points(1) {
		body = vg.Points(1)
	}

	for _, b := range c.bars {
		clr := c.up
		if b.Close < b.Open {
			clr = c.down
		}
		x := trX(unix(b))
		wick := draw.LineStyle{Color: clr, Width: vg.Points(0.6)}
		dc.StrokeLine2(wick, x, trY(b.Low), x, trY(b.High))

		top := trY(math.Max(b.Open, b.Close))
		bottom := trY(math.Min(b.Open, b.Close))
		if top-bottom < vg.Points(0.5) {
			top = bottom + vg.Points(0.5)
		}
		dc.FillPolygon(clr, []vg.Point{
			{X: x - body/2, Y: bottom},
			{X: x + body/2, Y: bottom},
			{X: x + body/2, Y: top},
			{X: x - body/2, Y: top},
		})
	}
}

// DataRange implements plot.DataRanger.
func (c *candles) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, b := range c.bars {
		x := unix(b)
		xmin, xmax = math.Min(xmin, x), math.Max(xmax, x)
		ymin, ymax = math.Min(ymin, b.Low), math.Max(ymax, b.High)
	}
	return xmin, xmax, ymin, ymax
}

func unix(b model.OHLCV) float64 {
	return float64(b.Time.Unix())
}
