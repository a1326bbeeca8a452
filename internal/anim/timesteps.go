package anim

import "math"

// Linspace returns n equally spaced timesteps from start to stop. The ends
// are kept exactly; interior steps are rounded to the nearest multiple of
// align and clamped to [start, stop].
func Linspace(start, stop int64, n int, align int64) []int64 {
	if n <= 0 {
		return nil
	}
	if align <= 0 {
		align = 1
	}
	lo, hi := min(start, stop), max(start, stop)
	steps := make([]int64, n)
	for i := range steps {
		switch i {
		case 0:
			steps[i] = start
			continue
		case n - 1:
			steps[i] = stop
			continue
		}
		v := float64(start) + float64(stop-start)*float64(i)/float64(n-1)
		steps[i] = min(max(int64(math.Round(v/float64(align)))*align, lo), hi)
	}
	return steps
}
