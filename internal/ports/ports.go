package ports

import (
	"context"
	"errors"
	"time"

	"github.com/forPelevin/ytclip/internal/types"
)

var (
	// ErrInvalidSource marks acquisition failures the caller can fix by
	// supplying a different source reference.
	ErrInvalidSource = errors.New("invalid source")
	// ErrNoCredentials is returned by a CredentialSource with nothing to offer.
	ErrNoCredentials = errors.New("no credentials available")
	// ErrMissingOutput is returned when an external call claims success but
	// its expected output file is absent.
	ErrMissingOutput = errors.New("expected output missing")
)

type CredentialSource interface {
	Resolve(ctx context.Context) (types.Credential, error)
}

type MetadataSource interface {
	Metadata(ctx context.Context, source string) (types.SourceMetadata, error)
}

type Acquirer interface {
	MetadataSource
	Download(ctx context.Context, source string, cred types.Credential, outPath string) error
}

type AudioDecoder interface {
	DecodePCM(ctx context.Context, inMedia string) (types.PCM, error)
}

type VideoTool interface {
	AudioDecoder
	ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error
	Cut(ctx context.Context, inMedia string, w types.SelectionWindow, outMP4 string) error
	BurnCaptions(ctx context.Context, inMP4, captionsPath, outMP4 string) error
	ProbeDuration(ctx context.Context, inMedia string) (time.Duration, error)
}

// ASR transcribes a mono 16 kHz WAV file with the given model size.
type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir, modelSize string) (types.Transcript, error)
}
