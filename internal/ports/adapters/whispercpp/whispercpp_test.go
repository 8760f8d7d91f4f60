package whispercpp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelPath(t *testing.T) {
	a := New("whisper", "/models", "", zerolog.Nop())
	assert.Equal(t, filepath.Join("/models", "ggml-small.bin"), a.ModelPath("small"))
	assert.Equal(t, filepath.Join("/models", "ggml-large-v3.bin"), a.ModelPath("large-v3"))
	assert.Equal(t, "/elsewhere/custom.bin", a.ModelPath("/elsewhere/custom.bin"))
}

func TestParseOutput(t *testing.T) {
	raw := []byte(`{
	  "result": {"language": "en"},
	  "transcription": [
	    {"timestamps": {"from": "00:00:00,000", "to": "00:00:02,500"}, "offsets": {"from": 0, "to": 2500}, "text": " Hello there."},
	    {"timestamps": {"from": "00:00:02,500", "to": "00:00:04,040"}, "offsets": {"from": 2500, "to": 4040}, "text": " General Kenobi! "}
	  ]
	}`)
	tr, err := parseOutput(raw)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, 0.0, tr.Segments[0].Start)
	assert.Equal(t, 2.5, tr.Segments[0].End)
	assert.Equal(t, "Hello there.", tr.Segments[0].Text)
	assert.Equal(t, 4.04, tr.Segments[1].End)
	assert.Equal(t, "General Kenobi!", tr.Segments[1].Text)
}

func TestParseOutput_Invalid(t *testing.T) {
	_, err := parseOutput([]byte("not json"))
	assert.Error(t, err)
}

func TestTranscribe_MissingModel(t *testing.T) {
	a := New("whisper", t.TempDir(), "", zerolog.Nop())
	_, err := a.Transcribe(context.Background(), "in.wav", t.TempDir(), "tiny")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ggml-tiny.bin")
}
