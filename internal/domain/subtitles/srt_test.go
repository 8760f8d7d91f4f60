package subtitles

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forPelevin/ytclip/internal/types"
)

func TestBuildSRT_SingleCue(t *testing.T) {
	got := BuildSRT([]types.Segment{{Start: 61.5, End: 63.25, Text: "hello\nworld"}})
	assert.Equal(t, "1\n00:01:01,500 --> 00:01:03,250\nhello world\n\n", got)
}

func TestBuildSRT_IndicesAndIdempotence(t *testing.T) {
	segs := []types.Segment{
		{Start: 0, End: 1.2, Text: " first "},
		{Start: 3, End: 4, Text: "second\r\nline"},
		{Start: 3.5, End: 6, Text: "overlap is kept"},
	}
	a := BuildSRT(segs)
	b := BuildSRT(segs)
	assert.Equal(t, a, b)

	blocks := strings.Split(strings.TrimSuffix(a, "\n\n"), "\n\n")
	assert.Len(t, blocks, len(segs))
	for i, blk := range blocks {
		lines := strings.Split(blk, "\n")
		assert.Len(t, lines, 3)
		assert.Equal(t, fmt.Sprint(i+1), lines[0])
	}
	assert.Contains(t, a, "\nsecond line\n")
	assert.Contains(t, a, "\nfirst\n")
}

func TestBuildSRT_Empty(t *testing.T) {
	assert.Equal(t, "", BuildSRT(nil))
}

func TestFormatTimestamp(t *testing.T) {
	tests := map[float64]string{
		0:         "00:00:00,000",
		0.0004:    "00:00:00,000",
		1.9996:    "00:00:02,000",
		61.5:      "00:01:01,500",
		3599.999:  "00:59:59,999",
		3723.042:  "01:02:03,042",
		360000.25: "100:00:00,250",
		-4:        "00:00:00,000",
	}
	for in, want := range tests {
		t.Run(want, func(t *testing.T) {
			assert.Equal(t, want, FormatTimestamp(in))
		})
	}
}

func TestNonEmpty(t *testing.T) {
	got := NonEmpty([]types.Segment{{Text: " "}, {Text: "a"}, {Text: "\n"}, {Text: "b"}})
	assert.Equal(t, []types.Segment{{Text: "a"}, {Text: "b"}}, got)
}
