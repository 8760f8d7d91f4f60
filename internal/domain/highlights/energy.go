package highlights

import (
	"errors"

	"github.com/forPelevin/ytclip/internal/types"
)

// ErrUnusableAudio is returned for empty buffers or a zero sample rate.
var ErrUnusableAudio = errors.New("unusable audio")

// SecondEnergies returns the mean squared amplitude of each one-second window
// of pcm. The last window may be shorter and is averaged over what it holds.
func SecondEnergies(pcm types.PCM) ([]float64, error) {
	channels := pcm.Channels
	if channels <= 0 {
		channels = 1
	}
	if len(pcm.Samples) == 0 || pcm.SampleRate <= 0 {
		return nil, ErrUnusableAudio
	}
	window := pcm.SampleRate * channels

	out := make([]float64, 0, len(pcm.Samples)/window+1)
	for i := 0; i < len(pcm.Samples); i += window {
		end := min(i+window, len(pcm.Samples))
		var sum float64
		for _, s := range pcm.Samples[i:end] {
			v := float64(s)
			sum += v * v
		}
		out = append(out, sum/float64(end-i))
	}
	return out, nil
}

// FromEnergy picks the loudest second of pcm and starts the window
// durationSec/2 (floored) before it.
func FromEnergy(pcm types.PCM, durationSec int) (types.SelectionWindow, error) {
	energies, err := SecondEnergies(pcm)
	if err != nil {
		return types.SelectionWindow{}, err
	}
	bestSecond := 0
	for i, e := range energies {
		if e > energies[bestSecond] {
			bestSecond = i
		}
	}
	start := max(0, bestSecond-durationSec/2)
	return types.SelectionWindow{StartSeconds: start, DurationSeconds: durationSec}, nil
}
