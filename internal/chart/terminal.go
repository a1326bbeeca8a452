package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/neurovis/internal/plasticity"
)

// Log10 maps values onto a log scale for terminal plots, which have no log
// axis. Non-positive values map to 0.
func Log10(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v > 0 {
			out[i] = math.Log10(v)
		}
	}
	return out
}

// Terminal renders the three panels of s as text plots.
func Terminal(s *plasticity.Series, width, height int) string {
	var b strings.Builder
	for _, p := range Panels {
		values := make([]float64, len(s.Samples))
		for i, smp := range s.Samples {
			values[i] = p.Value(smp)
		}
		caption := fmt.Sprintf("%s for simulation %s (log10)", p.Title, s.Variant)
		if len(values) == 0 {
			b.WriteString(caption + ": no samples\n\n")
			continue
		}
		b.WriteString(asciigraph.Plot(Log10(values),
			asciigraph.Width(width),
			asciigraph.Height(height),
			asciigraph.Precision(2),
			asciigraph.Caption(caption)))
		b.WriteString("\n\n")
	}
	return b.String()
}
