// Package gauge computes the geometry of the forecast temperature gauge: a
// filled polygon whose top edge follows the forecast temperatures.
package gauge

import (
	"fmt"
	"math"
	"slices"
)

// minSpan keeps a flat forecast from dividing by zero.
const minSpan = 0.1

// Point is a vertex in canvas coordinates, y growing downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline returns the closed polygon for temps drawn on a width x height
// canvas. It starts at the bottom-left corner, visits one vertex per
// temperature spaced evenly across the width and ends at the bottom-right
// corner. progress (clamped to 0..1) scales every vertex height and drives
// the reveal animation. Fewer than two temperatures yield no outline.
//
// A vertex sits height/4 above the baseline for the coldest step and
// 3*height/4 for the warmest.
func Outline(temps []float64, width, height, progress float64) []Point {
	if len(temps) < 2 {
		return nil
	}
	progress = math.Max(0, math.Min(1, progress))

	lo, hi := slices.Min(temps), slices.Max(temps)
	span := math.Max(hi-lo, minSpan)
	pad := height / 4
	interval := width / float64(len(temps)-1)

	pts := make([]Point, 0, len(temps)+2)
	pts = append(pts, Point{0, height})
	for i, v := range temps {
		percent := (v - lo) / span
		h := (pad + height/2*percent) * progress
		pts = append(pts, Point{X: float64(i) * interval, Y: height - h})
	}
	pts = append(pts, Point{width, height})
	return pts
}

// RGB is a colour with channels in 0..1.
type RGB struct {
	R, G, B float64
}

// Hex renders the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// TemperatureColor maps a Celsius temperature onto the display ramp: blue
// at -10°C and below, through green, to red at 30°C and above.
func TemperatureColor(celsius float64) RGB {
	v := math.Max(-10, math.Min(30, celsius)) + 10 // 0..40
	r := math.Max(0, (v-30)/10)
	if v >= 30 {
		return RGB{R: r, G: 1 - (v-30)/10, B: 0}
	}
	k := math.Pow(v/30, 2)
	return RGB{R: r, G: k, B: 1 - k}
}
