package subtitles

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/forPelevin/ytclip/internal/types"
)

// BuildSRT renders segments as a SubRip track: index from 1, a
// "start --> end" line, the text on one line, then a blank line.
func BuildSRT(segs []types.Segment) string {
	var b strings.Builder
	_ = WriteSRT(&b, segs)
	return b.String()
}

func WriteSRT(w io.Writer, segs []types.Segment) error {
	for i, s := range segs {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(s.Start), FormatTimestamp(s.End), singleLine(s.Text))
		if err != nil {
			return err
		}
	}
	return nil
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Hours grow past two digits
// only when needed.
func FormatTimestamp(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	ms := int64(math.Round(sec * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// NonEmpty drops segments whose text is blank.
func NonEmpty(segs []types.Segment) []types.Segment {
	out := make([]types.Segment, 0, len(segs))
	for _, s := range segs {
		if strings.TrimSpace(s.Text) != "" {
			out = append(out, s)
		}
	}
	return out
}

func singleLine(s string) string { return strings.Join(strings.Fields(s), " ") }
