package chart

import (
	"fmt"
	"image/color"
)

// Theme holds the colours of a chart.
type Theme struct {
	Background     color.Color
	Foreground     color.Color // text, axes
	Grid           color.Color
	Line           color.Color // close-price line
	Up             color.Color
	Down           color.Color
	MovingAverages []color.Color
}

// Dark is an exchange-style dark theme.
var Dark = Theme{
	Background: mustHex("#161a1e"),
	Foreground: mustHex("#b7bdc6"),
	Grid:       mustHex("#2c2e31"),
	Line:       color.White,
	Up:         mustHex("#3dc985"),
	Down:       mustHex("#ef4f60"),
	MovingAverages: []color.Color{
		mustHex("#ad7739"),
		mustHex("#a63ab2"),
		mustHex("#62b8ba"),
	},
}

func mustHex(s string) color.RGBA {
	var c color.RGBA
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		panic(fmt.Sprintf("bad colour %q: %v", s, err))
	}
	c.A = 0xff
	return c
}
