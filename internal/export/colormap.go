package export

import (
	"fmt"
	"image/color"
	"math"
)

// viridis stops, low to high
var stops = []color.RGBA{
	{68, 1, 84, 255},
	{59, 82, 139, 255},
	{33, 145, 140, 255},
	{94, 201, 98, 255},
	{253, 231, 37, 255},
}

// NoValue colors neurons without a sample.
var NoValue = color.RGBA{160, 160, 170, 255}

// Colormap maps v in [lo, hi] onto the viridis ramp. NaN maps to NoValue.
func Colormap(v, lo, hi float64) color.RGBA {
	if math.IsNaN(v) {
		return NoValue
	}
	t := 0.5
	if hi > lo {
		t = math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	f := pos - float64(i)
	a, b := stops[i], stops[i+1]
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + f*(float64(y)-float64(x)))) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}

func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
