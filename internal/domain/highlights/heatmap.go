package highlights

import (
	"errors"
	"math"

	"github.com/forPelevin/ytclip/internal/types"
)

// ErrNoSignal means the attention curve carried nothing to select from.
var ErrNoSignal = errors.New("no attention signal")

// FromHeatmap centres a window of durationSec on the most-watched entry of
// the curve. Ties go to the earliest entry. The window is not clamped against
// the source length here.
func FromHeatmap(curve types.AttentionCurve, durationSec int) (types.SelectionWindow, error) {
	if len(curve) == 0 {
		return types.SelectionWindow{}, ErrNoSignal
	}
	best := curve[0]
	for _, p := range curve[1:] {
		if p.Intensity > best.Intensity {
			best = p
		}
	}
	mid := (best.Start + best.End) / 2
	start := int(math.Round(mid - float64(durationSec)/2))
	if start < 0 {
		start = 0
	}
	return types.SelectionWindow{StartSeconds: start, DurationSeconds: durationSec}, nil
}
