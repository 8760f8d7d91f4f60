package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/ytclip/internal/logging"
	"github.com/forPelevin/ytclip/internal/types"
)

type CutMode string

const (
	CutCopy     CutMode = "copy"
	CutReencode CutMode = "reencode"
)

// Style is the caption look passed to the subtitles filter as force_style.
type Style struct {
	FontName      string
	FontSize      int
	PrimaryColour string
	OutlineColour string
	BorderStyle   int
	Outline       int
	Shadow        int
	WrapStyle     int
}

type Options struct {
	FFmpegPath  string
	FFprobePath string
	CutMode     CutMode
	// AnalysisRate is the sample rate DecodePCM resamples to.
	AnalysisRate int
	Style        Style
	Log          zerolog.Logger
}

type Adapter struct {
	ffmpeg       string
	ffprobe      string
	cutMode      CutMode
	analysisRate int
	style        Style
	log          zerolog.Logger
}

func New(o Options) *Adapter {
	if o.FFmpegPath == "" {
		o.FFmpegPath = "ffmpeg"
	}
	if o.FFprobePath == "" {
		o.FFprobePath = "ffprobe"
	}
	if o.CutMode == "" {
		o.CutMode = CutCopy
	}
	if o.AnalysisRate <= 0 {
		o.AnalysisRate = 8000
	}
	return &Adapter{
		ffmpeg:       o.FFmpegPath,
		ffprobe:      o.FFprobePath,
		cutMode:      o.CutMode,
		analysisRate: o.AnalysisRate,
		style:        o.Style,
		log:          logging.WithComponent(o.Log, "ffmpeg"),
	}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error {
	return a.run(ctx, "extract audio",
		"-y",
		"-i", inMedia,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
}

func (a *Adapter) Cut(ctx context.Context, inMedia string, w types.SelectionWindow, outMP4 string) error {
	return a.run(ctx, "cut", cutArgs(inMedia, w, outMP4, a.cutMode)...)
}

func (a *Adapter) BurnCaptions(ctx context.Context, inMP4, captionsPath, outMP4 string) error {
	return a.run(ctx, "burn captions",
		"-y",
		"-i", inMP4,
		"-vf", subtitlesFilter(captionsPath, a.style),
		"-c:a", "copy",
		outMP4,
	)
}

// DecodePCM decodes the audio track as mono signed 16-bit little-endian at the
// analysis rate.
func (a *Adapter) DecodePCM(ctx context.Context, inMedia string) (types.PCM, error) {
	args := []string{
		"-v", "error",
		"-i", inMedia,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(a.analysisRate),
		"-f", "s16le",
		"-",
	}
	a.log.Debug().Strs("args", args).Msg("decoding pcm")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return types.PCM{}, fmt.Errorf("ffmpeg decode pcm: %w\n%s", err, stderr.String())
	}
	return types.PCM{
		Samples:    parseS16LE(stdout.Bytes()),
		SampleRate: a.analysisRate,
		Channels:   1,
	}, nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inMedia string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inMedia,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func (a *Adapter) run(ctx context.Context, what string, args ...string) error {
	a.log.Debug().Str("op", what).Strs("args", args).Msg("executing ffmpeg")
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w\n%s", what, err, tail(string(b), 2000))
	}
	return nil
}

func cutArgs(in string, w types.SelectionWindow, out string, mode CutMode) []string {
	args := []string{
		"-y",
		"-ss", strconv.Itoa(w.StartSeconds),
		"-i", in,
		"-t", strconv.Itoa(w.DurationSeconds),
	}
	if mode == CutReencode {
		args = append(args,
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "18",
			"-c:a", "aac",
			"-b:a", "192k",
		)
	} else {
		args = append(args, "-c", "copy", "-avoid_negative_ts", "make_zero")
	}
	return append(args, out)
}

func subtitlesFilter(path string, s Style) string {
	return "subtitles=" + escapeFilterPath(path) + ":force_style='" + forceStyle(s) + "'"
}

func forceStyle(s Style) string {
	var parts []string
	if s.FontName != "" {
		parts = append(parts, "FontName="+s.FontName)
	}
	if s.FontSize > 0 {
		parts = append(parts, "FontSize="+strconv.Itoa(s.FontSize))
	}
	if s.PrimaryColour != "" {
		parts = append(parts, "PrimaryColour="+s.PrimaryColour)
	}
	if s.OutlineColour != "" {
		parts = append(parts, "OutlineColour="+s.OutlineColour)
	}
	parts = append(parts,
		"BorderStyle="+strconv.Itoa(s.BorderStyle),
		"Outline="+strconv.Itoa(s.Outline),
		"Shadow="+strconv.Itoa(s.Shadow),
		"WrapStyle="+strconv.Itoa(s.WrapStyle),
	)
	return strings.Join(parts, ",")
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}

func parseS16LE(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "…" + s[len(s)-n:]
}
