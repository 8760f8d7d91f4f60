package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/forPelevin/ytclip/internal/artifacts"
	"github.com/forPelevin/ytclip/internal/config"
	"github.com/forPelevin/ytclip/internal/logging"
	"github.com/forPelevin/ytclip/internal/ports"
	"github.com/forPelevin/ytclip/internal/ports/adapters/cookies"
	"github.com/forPelevin/ytclip/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/ytclip/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/ytclip/internal/ports/adapters/whisperhttp"
	"github.com/forPelevin/ytclip/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/ytclip/internal/types"
	"github.com/forPelevin/ytclip/internal/usecase"
)

// Request is one clip job as a front end submits it.
type Request struct {
	Source string
	// Start, when set, overrides both selection signals.
	Start           *int
	DurationSeconds int
	ModelSize       string
}

// Engine builds the adapters once and runs any number of requests, possibly
// concurrently.
type Engine struct {
	cfg    *config.Config
	uc     usecase.Usecase
	layout *artifacts.Layout
	log    zerolog.Logger
	now    func() time.Time
}

func New(cfg *config.Config, base zerolog.Logger) *Engine {
	log := logging.WithComponent(base, "pipeline")

	layout := artifacts.NewLayout(cfg.Output.Root, artifacts.Dirs{
		Raw:     cfg.Output.RawDir,
		Segment: cfg.Output.SegmentDir,
		Caption: cfg.Output.CaptionDir,
		Final:   cfg.Output.FinalDir,
	})

	video := ffmpeg.New(ffmpeg.Options{
		FFmpegPath:   cfg.FFmpegPath,
		FFprobePath:  cfg.FFprobePath,
		CutMode:      ffmpeg.CutMode(cfg.CutMode),
		AnalysisRate: cfg.AnalysisSampleRate,
		Style: ffmpeg.Style{
			FontName:      cfg.Caption.FontName,
			FontSize:      cfg.Caption.FontSize,
			PrimaryColour: cfg.Caption.PrimaryColour,
			OutlineColour: cfg.Caption.OutlineColour,
			BorderStyle:   cfg.Caption.BorderStyle,
			Outline:       cfg.Caption.Outline,
			Shadow:        cfg.Caption.Shadow,
			WrapStyle:     cfg.Caption.WrapStyle,
		},
		Log: base,
	})

	return &Engine{
		cfg:    cfg,
		layout: layout,
		log:    log,
		now:    time.Now,
		uc: usecase.New(usecase.Deps{
			Credentials: cookies.New(cfg.ResourceDir, cfg.CookiesFile, cfg.CookiesFromBrowser),
			Acquirer:    ytdlp.New(cfg.YtDlpPath, cfg.YtDlpFormat, base),
			Video:       video,
			ASR:         newASR(cfg, base),
			Layout:      layout,
			Log:         log,
		}),
	}
}

func newASR(cfg *config.Config, log zerolog.Logger) ports.ASR {
	w := cfg.Whisper
	if w.URL != "" {
		return whisperhttp.New(whisperhttp.Options{
			BaseURL:  w.URL,
			Model:    w.APIModel,
			Language: w.Language,
			APIKey:   w.APIKey,
			Timeout:  w.Timeout,
			Log:      log,
		})
	}
	return whispercpp.New(w.Bin, w.ModelDir, w.Language, log)
}

func (e *Engine) Layout() *artifacts.Layout { return e.layout }

// Run executes one request to completion. Errors are *types.PipelineError.
func (e *Engine) Run(ctx context.Context, req Request) (types.Result, error) {
	in, err := e.prepare(req)
	if err != nil {
		return types.Result{Source: req.Source}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RunTimeout)
	defer cancel()

	e.log.Info().
		Str("run_id", in.RunID).
		Str("source", in.Source).
		Int("duration", in.DurationSeconds).
		Str("model", in.ModelSize).
		Str("cache", in.CacheDir).
		Msg("run started")
	return e.uc.Run(ctx, in)
}

func (e *Engine) prepare(req Request) (usecase.Input, error) {
	source := strings.TrimSpace(req.Source)
	if err := ytdlp.ValidateSourceURL(source); err != nil {
		return usecase.Input{}, types.NewPipelineError(types.StageAcquire, types.KindInvalidInput, true, err)
	}

	dur := req.DurationSeconds
	if dur == 0 {
		dur = e.cfg.DefaultDuration
	}
	if dur < 0 || dur > e.cfg.MaxDuration {
		err := fmt.Errorf("duration must be within 1..%d seconds, got %d", e.cfg.MaxDuration, dur)
		return usecase.Input{}, types.NewPipelineError(types.StageResolveMoment, types.KindInvalidInput, true, err)
	}

	model := req.ModelSize
	if model == "" {
		model = e.cfg.Whisper.ModelSize
	}

	var override *types.SelectionWindow
	if req.Start != nil {
		override = &types.SelectionWindow{StartSeconds: *req.Start, DurationSeconds: dur}
	}

	runID := buildRunID(source, e.now())
	return usecase.Input{
		Source:          source,
		Override:        override,
		DurationSeconds: dur,
		ModelSize:       model,
		CacheDir:        filepath.Join(e.cfg.Output.CacheDir, "runs", runID),
		RunID:           runID,
	}, nil
}

// buildRunID names a run after its source, e.g. "dqw4w9wgxcq-20260212-103045Z-1a2b3c".
func buildRunID(source string, now time.Time) string {
	name := normalizePathSegment(sourceName(source))
	if name == "" {
		name = "source"
	}
	if len(name) > 40 {
		name = strings.Trim(name[:40], "-")
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", source, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return fmt.Sprintf("%s-%s-%s", name, ts, suffix)
}

// sourceName picks the most recognisable part of a source URL: the "v"
// query parameter when present, else the last path element, else the host.
func sourceName(source string) string {
	u, err := url.Parse(source)
	if err != nil {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if base := path.Base(u.Path); base != "/" && base != "." {
		return strings.TrimSuffix(base, path.Ext(base))
	}
	return u.Hostname()
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var (
	_ ports.CredentialSource = (*cookies.Source)(nil)
	_ ports.Acquirer         = (*ytdlp.Adapter)(nil)
	_ ports.VideoTool        = (*ffmpeg.Adapter)(nil)
	_ ports.ASR              = (*whispercpp.Adapter)(nil)
	_ ports.ASR              = (*whisperhttp.Client)(nil)
)
