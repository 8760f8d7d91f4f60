package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/ytclip/internal/artifacts"
	"github.com/forPelevin/ytclip/internal/domain/highlights"
	"github.com/forPelevin/ytclip/internal/domain/subtitles"
	"github.com/forPelevin/ytclip/internal/metrics"
	"github.com/forPelevin/ytclip/internal/ports"
	"github.com/forPelevin/ytclip/internal/types"
)

type Deps struct {
	Credentials ports.CredentialSource
	Acquirer    ports.Acquirer
	Video       ports.VideoTool
	ASR         ports.ASR
	Layout      *artifacts.Layout
	Log         zerolog.Logger
}

type Usecase struct {
	d        Deps
	resolver *highlights.Resolver
}

func New(d Deps) Usecase {
	return Usecase{d: d, resolver: highlights.NewResolver(d.Acquirer, d.Video)}
}

type Input struct {
	Source string
	// Override skips both selection signals when set.
	Override        *types.SelectionWindow
	DurationSeconds int
	ModelSize       string
	// CacheDir holds per-run scratch files (extracted WAV, ASR output).
	CacheDir string
	RunID    string
}

// Run executes one clip run:
//
//	credentials -> moment(pre) -> acquire -> moment(fallback)? -> cut -> transcribe -> composite
//
// Every failure is returned as a *types.PipelineError. Artifacts written by
// earlier stages stay on disk.
func (u Usecase) Run(ctx context.Context, in Input) (res types.Result, err error) {
	log := u.d.Log.With().Str("run_id", in.RunID).Str("source", in.Source).Logger()
	res = types.Result{RunID: in.RunID, Source: in.Source}

	metrics.RunsInFlight.Inc()
	defer func() {
		metrics.RunsInFlight.Dec()
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.RunsTotal.WithLabelValues(outcome, string(res.Signal)).Inc()
	}()

	if err := validateInput(in); err != nil {
		return res, u.fail(log, types.StageResolveMoment, types.KindInvalidInput, true, err)
	}

	cred := u.resolveCredentials(ctx, log)

	// moment (pre-download)
	done := u.begin(log, types.StageResolveMoment)
	pre, err := u.resolver.Resolve(ctx, in.Source, in.Override, in.DurationSeconds)
	done()
	if err != nil {
		return res, u.fail(log, types.StageResolveMoment, types.KindAcquisitionFailed, false, err)
	}
	if pre.NeedsFallback {
		log.Warn().Err(pre.FallbackReason).
			Str("kind", string(types.KindMomentSignalUnavailable)).
			Msg("no attention signal, selecting by audio energy after download")
	} else {
		res.Window, res.Signal = pre.Window, pre.Signal
		log.Info().Str("signal", string(res.Signal)).
			Int("start", res.Window.StartSeconds).Int("duration", res.Window.DurationSeconds).
			Msg("window resolved")
	}

	// acquire
	done = u.begin(log, types.StageAcquire)
	raw, err := u.acquire(ctx, in.Source, cred)
	done()
	if err != nil {
		return res, u.fail(log, types.StageAcquire, types.KindAcquisitionFailed, errors.Is(err, ports.ErrInvalidSource), err)
	}
	res.Raw = raw

	// moment (fallback)
	if pre.NeedsFallback {
		done = u.begin(log, types.StageFallback)
		w, err := u.resolver.Fallback(ctx, raw.Path, in.DurationSeconds)
		done()
		if err != nil {
			return res, u.fail(log, types.StageFallback, types.KindUnusableAudio, errors.Is(err, highlights.ErrUnusableAudio), err)
		}
		res.Window, res.Signal = w, types.SignalEnergy
		log.Info().Str("signal", string(res.Signal)).
			Int("start", w.StartSeconds).Int("duration", w.DurationSeconds).
			Msg("window resolved")
	}

	// cut
	done = u.begin(log, types.StageCut)
	res.Window = highlights.ClampWindow(res.Window, u.totalSeconds(ctx, log, pre.TotalSeconds, raw.Path))
	seg, err := u.cut(ctx, raw, res.Window)
	done()
	if err != nil {
		return res, u.fail(log, types.StageCut, types.KindCutFailed, false, err)
	}
	res.Segment = seg

	// transcribe
	done = u.begin(log, types.StageTranscribe)
	cues, err := u.transcribe(ctx, seg, in)
	done()
	if err != nil {
		kind := types.KindTranscriptionFailed
		if errors.Is(err, errNoSpeech) {
			kind = types.KindEmptyTranscript
		}
		return res, u.fail(log, types.StageTranscribe, kind, kind == types.KindEmptyTranscript, err)
	}
	caption, err := u.writeCaptions(cues)
	if err != nil {
		return res, u.fail(log, types.StageTranscribe, types.KindTranscriptionFailed, false, err)
	}
	res.Captions, res.Cues = caption, len(cues)

	// composite
	done = u.begin(log, types.StageComposite)
	final, err := u.composite(ctx, seg, caption)
	done()
	if err != nil {
		return res, u.fail(log, types.StageComposite, types.KindCompositeFailed, false, err)
	}
	res.Final = final

	log.Info().Str("final", final.Path).Int("cues", res.Cues).Msg("run complete")
	return res, nil
}

var errNoSpeech = errors.New("transcript has no non-empty segments")

func validateInput(in Input) error {
	if in.DurationSeconds <= 0 {
		return fmt.Errorf("duration must be > 0, got %d", in.DurationSeconds)
	}
	if o := in.Override; o != nil {
		if o.StartSeconds < 0 {
			return fmt.Errorf("override start must be >= 0, got %d", o.StartSeconds)
		}
		if o.DurationSeconds <= 0 {
			return fmt.Errorf("override duration must be > 0, got %d", o.DurationSeconds)
		}
	}
	return nil
}

// resolveCredentials never fails the run; without a handle the download is
// attempted anonymously.
func (u Usecase) resolveCredentials(ctx context.Context, log zerolog.Logger) types.Credential {
	if u.d.Credentials == nil {
		return types.Credential{}
	}
	done := u.begin(log, types.StageResolveCredentials)
	defer done()
	cred, err := u.d.Credentials.Resolve(ctx)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(types.KindCredentialUnavailable)).Msg("acquiring anonymously")
		return types.Credential{}
	}
	if cred.CookieFile != "" {
		log.Info().Str("cookies", cred.CookieFile).Msg("using cookie file")
	} else if cred.Browser != "" {
		log.Info().Str("browser", cred.Browser).Msg("using browser cookies")
	}
	return cred
}

func (u Usecase) acquire(ctx context.Context, source string, cred types.Credential) (types.Artifact, error) {
	raw, err := u.d.Layout.Allocate(types.RoleRaw, "mp4")
	if err != nil {
		return raw, err
	}
	if err := u.d.Acquirer.Download(ctx, source, cred, raw.Path); err != nil {
		return raw, err
	}
	return raw, artifacts.Verify(raw)
}

// totalSeconds prefers the metadata length and probes the raw file otherwise.
// Zero means unknown and disables clamping.
func (u Usecase) totalSeconds(ctx context.Context, log zerolog.Logger, fromMeta float64, rawPath string) float64 {
	if fromMeta > 0 {
		return fromMeta
	}
	d, err := u.d.Video.ProbeDuration(ctx, rawPath)
	if err != nil {
		log.Warn().Err(err).Msg("probe duration failed, window not clamped")
		return 0
	}
	return d.Seconds()
}

func (u Usecase) cut(ctx context.Context, raw types.Artifact, w types.SelectionWindow) (types.Artifact, error) {
	seg, err := u.d.Layout.Allocate(types.RoleSegment, "mp4")
	if err != nil {
		return seg, err
	}
	if err := u.d.Video.Cut(ctx, raw.Path, w, seg.Path); err != nil {
		return seg, err
	}
	return seg, artifacts.Verify(seg)
}

func (u Usecase) transcribe(ctx context.Context, seg types.Artifact, in Input) ([]types.Segment, error) {
	cacheDir := in.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "ytclip-"+seg.ID)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}
	wav := filepath.Join(cacheDir, "segment.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, seg.Path, wav); err != nil {
		return nil, err
	}
	tr, err := u.d.ASR.Transcribe(ctx, wav, cacheDir, in.ModelSize)
	if err != nil {
		return nil, err
	}
	cues := subtitles.NonEmpty(tr.Segments)
	if len(cues) == 0 {
		return nil, fmt.Errorf("%d segments returned: %w", len(tr.Segments), errNoSpeech)
	}
	return cues, nil
}

func (u Usecase) writeCaptions(cues []types.Segment) (types.Artifact, error) {
	a, err := u.d.Layout.Allocate(types.RoleCaption, "srt")
	if err != nil {
		return a, err
	}
	f, err := os.Create(a.Path)
	if err != nil {
		return a, err
	}
	if err := subtitles.WriteSRT(f, cues); err != nil {
		_ = f.Close()
		return a, fmt.Errorf("write captions: %w", err)
	}
	if err := f.Close(); err != nil {
		return a, err
	}
	return a, artifacts.Verify(a)
}

func (u Usecase) composite(ctx context.Context, seg, caption types.Artifact) (types.Artifact, error) {
	final, err := u.d.Layout.Allocate(types.RoleFinal, "mp4")
	if err != nil {
		return final, err
	}
	if err := u.d.Video.BurnCaptions(ctx, seg.Path, caption.Path, final.Path); err != nil {
		return final, err
	}
	return final, artifacts.Verify(final)
}

func (u Usecase) begin(log zerolog.Logger, stage types.Stage) func() {
	start := time.Now()
	log.Debug().Str("stage", string(stage)).Msg("stage started")
	return func() {
		d := time.Since(start)
		metrics.ObserveStage(string(stage), d)
		log.Info().Str("stage", string(stage)).Dur("elapsed", d).Msg("stage done")
	}
}

func (u Usecase) fail(log zerolog.Logger, stage types.Stage, kind types.ErrorKind, inputFault bool, err error) error {
	metrics.StageFailed(string(stage), string(kind))
	log.Error().Err(err).
		Str("stage", string(stage)).
		Str("kind", string(kind)).
		Bool("input_fault", inputFault).
		Msg("run aborted")
	return types.NewPipelineError(stage, kind, inputFault, err)
}
