package highlights

import (
	"context"
	"fmt"

	"github.com/forPelevin/ytclip/internal/ports"
	"github.com/forPelevin/ytclip/internal/types"
)

// Resolution is the outcome of the pre-download selection pass.
type Resolution struct {
	Window types.SelectionWindow
	Signal types.Signal
	// NeedsFallback is set when no window could be chosen before the raw
	// media is local; Window is then zero.
	NeedsFallback bool
	// FallbackReason explains why the heatmap tier was skipped.
	FallbackReason error
	// TotalSeconds is the source length reported by metadata, 0 if unknown.
	TotalSeconds float64
}

// Resolver chooses the selection window: explicit override first, then the
// attention heatmap, then the loudest second of the decoded audio.
type Resolver struct {
	meta  ports.MetadataSource
	audio ports.AudioDecoder
}

func NewResolver(meta ports.MetadataSource, audio ports.AudioDecoder) *Resolver {
	return &Resolver{meta: meta, audio: audio}
}

// Resolve runs the tiers that need no download. An override short-circuits
// the metadata query entirely.
func (r *Resolver) Resolve(ctx context.Context, source string, override *types.SelectionWindow, durationSec int) (Resolution, error) {
	if override != nil {
		return Resolution{Window: *override, Signal: types.SignalOverride}, nil
	}

	md, err := r.meta.Metadata(ctx, source)
	if err != nil {
		if ctx.Err() != nil {
			return Resolution{}, ctx.Err()
		}
		return Resolution{NeedsFallback: true, FallbackReason: fmt.Errorf("metadata: %w", err)}, nil
	}

	w, err := FromHeatmap(md.Heatmap, durationSec)
	if err != nil {
		return Resolution{NeedsFallback: true, FallbackReason: err, TotalSeconds: md.DurationSeconds}, nil
	}
	return Resolution{Window: w, Signal: types.SignalHeatmap, TotalSeconds: md.DurationSeconds}, nil
}

// Fallback decodes the audio of the local raw media and selects by energy.
func (r *Resolver) Fallback(ctx context.Context, rawPath string, durationSec int) (types.SelectionWindow, error) {
	pcm, err := r.audio.DecodePCM(ctx, rawPath)
	if err != nil {
		return types.SelectionWindow{}, fmt.Errorf("decode audio: %w", err)
	}
	return FromEnergy(pcm, durationSec)
}
