package whisperhttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWav(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "seg.wav")
	require.NoError(t, os.WriteFile(p, []byte("RIFF....WAVE"), 0o644))
	return p
}

func TestTranscribe(t *testing.T) {
	var gotModel, gotFormat, gotAuth string
	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		gotAuth = r.Header.Get("Authorization")
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		gotFile, _ = io.ReadAll(f)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"hi there","language":"en","segments":[
			{"id":0,"start":0.0,"end":1.5,"text":" hi "},
			{"id":1,"start":1.5,"end":3.25,"text":"there"}]}`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/", APIKey: "k", Log: zerolog.Nop()})
	tr, err := c.Transcribe(context.Background(), writeWav(t), "", "small")
	require.NoError(t, err)

	assert.Equal(t, "small", gotModel, "size selector is sent when no model is configured")
	assert.Equal(t, "verbose_json", gotFormat)
	assert.Equal(t, "Bearer k", gotAuth)
	assert.Equal(t, "RIFF....WAVE", string(gotFile))
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "hi", tr.Segments[0].Text)
	assert.Equal(t, 3.25, tr.Segments[1].End)
}

func TestTranscribe_ConfiguredModelWins(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		io.WriteString(w, `{"segments":[]}`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Model: "Systran/faster-whisper-small", Log: zerolog.Nop()})
	tr, err := c.Transcribe(context.Background(), writeWav(t), "", "small")
	require.NoError(t, err)
	assert.Equal(t, "Systran/faster-whisper-small", gotModel)
	assert.Empty(t, tr.Segments)
}

func TestTranscribe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Log: zerolog.Nop()})
	_, err := c.Transcribe(context.Background(), writeWav(t), "", "small")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
