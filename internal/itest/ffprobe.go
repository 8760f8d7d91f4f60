//go:build integration

package itest

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"testing"
)

func probeDurationSeconds(mp4Path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func requireTools(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := exec.LookPath(n); err != nil {
			t.Skipf("%s not on PATH", n)
		}
	}
}

// makeFixture writes a black 640x360 video of seconds length whose 440 Hz
// tone is quiet except for the second starting at loudAt.
func makeFixture(t *testing.T, path string, seconds, loudAt int) {
	t.Helper()
	vol := fmt.Sprintf("volume='if(between(t,%d,%d),1.0,0.02)':eval=frame", loudAt, loudAt+1)
	ff := exec.Command("ffmpeg",
		"-y", "-v", "error",
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=black:s=640x360:d=%d", seconds),
		"-f", "lavfi", "-i", fmt.Sprintf("sine=f=440:d=%d", seconds),
		"-af", vol,
		"-shortest",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-g", "25",
		"-c:a", "aac",
		path,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
}
