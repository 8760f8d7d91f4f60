package highlights

import (
	"math"

	"github.com/forPelevin/ytclip/internal/types"
)

// ClampWindow fits w inside a source of totalSec seconds. The window keeps its
// length and moves back when it overruns the end; it only shrinks when the
// source is shorter than the window. Unknown totals (<= 0) leave w untouched.
func ClampWindow(w types.SelectionWindow, totalSec float64) types.SelectionWindow {
	if totalSec <= 0 {
		return w
	}
	total := max(int(math.Floor(totalSec)), 1)
	if w.DurationSeconds >= total {
		return types.SelectionWindow{StartSeconds: 0, DurationSeconds: total}
	}
	if w.EndSeconds() > total {
		w.StartSeconds = total - w.DurationSeconds
	}
	return w
}
