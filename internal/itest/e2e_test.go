//go:build integration

package itest

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/ytclip/internal/artifacts"
	"github.com/forPelevin/ytclip/internal/domain/highlights"
	"github.com/forPelevin/ytclip/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/ytclip/internal/types"
	"github.com/forPelevin/ytclip/internal/usecase"
)

func TestFFmpeg_EnergyPeakOnRealAudio(t *testing.T) {
	requireTools(t, "ffmpeg")

	in := filepath.Join(t.TempDir(), "input.mp4")
	makeFixture(t, in, 60, 40)

	v := ffmpeg.New(ffmpeg.Options{Log: zerolog.Nop()})
	pcm, err := v.DecodePCM(context.Background(), in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	w, err := highlights.FromEnergy(pcm, 25)
	if err != nil {
		t.Fatalf("energy: %v", err)
	}
	if w.StartSeconds != 28 {
		t.Fatalf("start = %d, want 28", w.StartSeconds)
	}
}

func TestFFmpeg_CutModes(t *testing.T) {
	requireTools(t, "ffmpeg", "ffprobe")

	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")
	makeFixture(t, in, 30, 5)

	for _, mode := range []ffmpeg.CutMode{ffmpeg.CutCopy, ffmpeg.CutReencode} {
		t.Run(string(mode), func(t *testing.T) {
			v := ffmpeg.New(ffmpeg.Options{CutMode: mode, Log: zerolog.Nop()})
			out := filepath.Join(tmp, string(mode)+".mp4")
			w := types.SelectionWindow{StartSeconds: 10, DurationSeconds: 8}
			if err := v.Cut(context.Background(), in, w, out); err != nil {
				t.Fatalf("cut: %v", err)
			}
			got, err := probeDurationSeconds(out)
			if err != nil {
				t.Fatalf("probe: %v", err)
			}
			// Stream copy snaps to keyframes.
			if math.Abs(got-8) > 1.5 {
				t.Fatalf("segment duration = %.2fs, want ~8s", got)
			}
		})
	}
}

// copyAcquirer stands in for the download tool with a local file.
type copyAcquirer struct {
	src string
	md  types.SourceMetadata
}

func (c copyAcquirer) Metadata(context.Context, string) (types.SourceMetadata, error) {
	return c.md, nil
}

func (c copyAcquirer) Download(_ context.Context, _ string, _ types.Credential, outPath string) error {
	in, err := os.Open(c.src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type staticASR struct{ tr types.Transcript }

func (s staticASR) Transcribe(context.Context, string, string, string) (types.Transcript, error) {
	return s.tr, nil
}

func TestE2E_LocalSourceEnergyFallback(t *testing.T) {
	requireTools(t, "ffmpeg", "ffprobe")

	tmp := t.TempDir()
	src := filepath.Join(tmp, "source.mp4")
	makeFixture(t, src, 60, 40)

	uc := usecase.New(usecase.Deps{
		Acquirer: copyAcquirer{src: src},
		Video:    ffmpeg.New(ffmpeg.Options{CutMode: ffmpeg.CutReencode, Log: zerolog.Nop()}),
		ASR: staticASR{tr: types.Transcript{Segments: []types.Segment{
			{Start: 0.5, End: 3, Text: "here is the key idea"},
			{Start: 3, End: 6.5, Text: "step one, measure results"},
		}}},
		Layout: artifacts.NewLayout(filepath.Join(tmp, "out"), artifacts.DefaultDirs()),
		Log:    zerolog.Nop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	res, err := uc.Run(ctx, usecase.Input{
		Source:          "https://example.com/source.mp4",
		DurationSeconds: 10,
		ModelSize:       "small",
		CacheDir:        filepath.Join(tmp, ".cache"),
		RunID:           "itest",
	})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if res.Signal != types.SignalEnergy || res.Window.StartSeconds != 35 {
		t.Fatalf("window = %+v (%s), want start 35 (energy)", res.Window, res.Signal)
	}
	got, err := probeDurationSeconds(res.Final.Path)
	if err != nil {
		t.Fatalf("probe final: %v", err)
	}
	if math.Abs(got-10) > 1.5 {
		t.Fatalf("final duration = %.2fs, want ~10s", got)
	}
}
