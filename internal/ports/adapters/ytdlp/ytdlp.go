package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/ytclip/internal/logging"
	"github.com/forPelevin/ytclip/internal/ports"
	"github.com/forPelevin/ytclip/internal/types"
)

type Adapter struct {
	bin    string
	format string
	log    zerolog.Logger
}

func New(binPath, format string, log zerolog.Logger) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if format == "" {
		format = "mp4/bestvideo[ext=mp4]+bestaudio[ext=m4a]/best"
	}
	return &Adapter{bin: binPath, format: format, log: logging.WithComponent(log, "ytdlp")}
}

// Metadata queries duration and heatmap without downloading.
func (a *Adapter) Metadata(ctx context.Context, source string) (types.SourceMetadata, error) {
	if err := ValidateSourceURL(source); err != nil {
		return types.SourceMetadata{}, err
	}
	args := []string{"--dump-single-json", "--skip-download", "--no-playlist", "--no-warnings", source}
	a.log.Debug().Strs("args", args).Msg("querying metadata")

	cmd := exec.CommandContext(ctx, a.bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return types.SourceMetadata{}, classify(fmt.Errorf("yt-dlp metadata: %w\n%s", err, stderr.String()), stderr.String())
	}
	return parseMetadata(out)
}

// Download writes the source into exactly outPath.
func (a *Adapter) Download(ctx context.Context, source string, cred types.Credential, outPath string) error {
	if err := ValidateSourceURL(source); err != nil {
		return err
	}
	args := downloadArgs(source, a.format, cred, outPath)
	a.log.Debug().Strs("args", args).Msg("downloading")

	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return classify(fmt.Errorf("yt-dlp download: %w\n%s", err, tailLines(string(b), 20)), string(b))
	}
	return nil
}

func downloadArgs(source, format string, cred types.Credential, outPath string) []string {
	args := []string{
		"--no-playlist",
		"--no-part",
		"--force-overwrites",
		"-f", format,
		"--merge-output-format", "mp4",
		"-o", outPath,
	}
	switch {
	case cred.CookieFile != "":
		args = append(args, "--cookies", cred.CookieFile)
	case cred.Browser != "":
		args = append(args, "--cookies-from-browser", cred.Browser)
	}
	return append(args, "--", source)
}

type infoJSON struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Heatmap  []struct {
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
		Value     float64 `json:"value"`
	} `json:"heatmap"`
}

func parseMetadata(b []byte) (types.SourceMetadata, error) {
	var info infoJSON
	if err := json.Unmarshal(b, &info); err != nil {
		return types.SourceMetadata{}, fmt.Errorf("parse yt-dlp json: %w", err)
	}
	md := types.SourceMetadata{Title: info.Title, DurationSeconds: info.Duration}
	for _, h := range info.Heatmap {
		md.Heatmap = append(md.Heatmap, types.AttentionPoint{Start: h.StartTime, End: h.EndTime, Intensity: h.Value})
	}
	return md, nil
}

// Messages yt-dlp prints when the source itself is the problem.
var inputFaultMarkers = []string{
	"Unsupported URL",
	"is not a valid URL",
	"Video unavailable",
	"Private video",
	"This video has been removed",
	"Sign in to confirm your age",
	"HTTP Error 404",
}

func classify(err error, output string) error {
	for _, m := range inputFaultMarkers {
		if strings.Contains(output, m) {
			return fmt.Errorf("%w: %w", ports.ErrInvalidSource, err)
		}
	}
	return err
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
