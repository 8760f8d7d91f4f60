package ffmpeg

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/ytclip/internal/types"
)

func TestCutArgs(t *testing.T) {
	w := types.SelectionWindow{StartSeconds: 95, DurationSeconds: 20}

	copyArgs := strings.Join(cutArgs("raw.mp4", w, "seg.mp4", CutCopy), " ")
	assert.Equal(t, "-y -ss 95 -i raw.mp4 -t 20 -c copy -avoid_negative_ts make_zero seg.mp4", copyArgs)

	reenc := cutArgs("raw.mp4", w, "seg.mp4", CutReencode)
	assert.Contains(t, reenc, "libx264")
	assert.Contains(t, reenc, "aac")
	assert.Equal(t, "seg.mp4", reenc[len(reenc)-1])
}

func TestSubtitlesFilter(t *testing.T) {
	style := Style{
		FontName:      "Anton",
		FontSize:      20,
		PrimaryColour: "&HFFFFFF",
		OutlineColour: "&H000000",
		BorderStyle:   1,
		Outline:       2,
		Shadow:        1,
		WrapStyle:     2,
	}
	got := subtitlesFilter(`C:\clips\it's.srt`, style)
	assert.Equal(t,
		`subtitles=C\:\\clips\\it\'s.srt:force_style='FontName=Anton,FontSize=20,PrimaryColour=&HFFFFFF,OutlineColour=&H000000,BorderStyle=1,Outline=2,Shadow=1,WrapStyle=2'`,
		got)
}

func TestParseS16LE(t *testing.T) {
	got := parseS16LE([]byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80, 0x7f})
	assert.Equal(t, []int16{1, -1, -32768}, got, "odd trailing byte is dropped")
}

func TestNew_Defaults(t *testing.T) {
	a := New(Options{Log: zerolog.Nop()})
	assert.Equal(t, "ffmpeg", a.ffmpeg)
	assert.Equal(t, "ffprobe", a.ffprobe)
	assert.Equal(t, CutCopy, a.cutMode)
	assert.Equal(t, 8000, a.analysisRate)
}

func TestRun_MissingBinary(t *testing.T) {
	a := New(Options{FFmpegPath: "/nonexistent/ffmpeg-binary", Log: zerolog.Nop()})
	err := a.Cut(context.Background(), "in.mp4", types.SelectionWindow{DurationSeconds: 5}, "out.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg cut")
}
