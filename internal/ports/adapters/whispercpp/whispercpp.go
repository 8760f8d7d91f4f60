package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/ytclip/internal/logging"
	"github.com/forPelevin/ytclip/internal/types"
)

type Adapter struct {
	bin      string
	modelDir string
	language string
	log      zerolog.Logger
}

func New(binPath, modelDir, language string, log zerolog.Logger) *Adapter {
	return &Adapter{
		bin:      binPath,
		modelDir: modelDir,
		language: language,
		log:      logging.WithComponent(log, "whisper"),
	}
}

// ModelPath maps a size selector ("tiny", "small", "large-v3") onto the ggml
// file in the model dir. A value that already names a .bin file is used as is.
func (a *Adapter) ModelPath(size string) string {
	if strings.HasSuffix(size, ".bin") {
		return size
	}
	return filepath.Join(a.modelDir, "ggml-"+size+".bin")
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir, modelSize string) (types.Transcript, error) {
	model := a.ModelPath(modelSize)
	if _, err := os.Stat(model); err != nil {
		return types.Transcript{}, fmt.Errorf("whisper model %s: %w", model, err)
	}

	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	if a.language != "" {
		args = append(args, "-l", a.language)
	}
	a.log.Debug().Strs("args", args).Msg("executing whisper.cpp")
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return parseOutput(jb)
}

type output struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// parseOutput reads whisper.cpp's -oj layout; offsets are milliseconds.
func parseOutput(b []byte) (types.Transcript, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper.cpp json: %w", err)
	}
	tr := types.Transcript{Segments: make([]types.Segment, 0, len(out.Transcription))}
	for _, s := range out.Transcription {
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return tr, nil
}
