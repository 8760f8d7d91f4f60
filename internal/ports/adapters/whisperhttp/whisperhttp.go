// Package whisperhttp transcribes through an OpenAI-compatible
// /v1/audio/transcriptions endpoint (speaches, faster-whisper-server,
// whisper.cpp's server in OpenAI mode, or the hosted API).
package whisperhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/ytclip/internal/logging"
	"github.com/forPelevin/ytclip/internal/types"
)

type Client struct {
	url      string
	model    string
	language string
	apiKey   string
	client   *http.Client
	log      zerolog.Logger
}

type Options struct {
	BaseURL string
	// Model is sent as the "model" form field. Empty means the size selector
	// passed to Transcribe is sent instead.
	Model    string
	Language string
	APIKey   string
	Timeout  time.Duration
	Log      zerolog.Logger
}

func New(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Minute
	}
	return &Client{
		url:      strings.TrimRight(o.BaseURL, "/") + "/v1/audio/transcriptions",
		model:    o.Model,
		language: o.Language,
		apiKey:   o.APIKey,
		client:   &http.Client{Timeout: o.Timeout},
		log:      logging.WithComponent(o.Log, "whisper"),
	}
}

type verboseResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (c *Client) Transcribe(ctx context.Context, wavPath, _ string, modelSize string) (types.Transcript, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return types.Transcript{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return types.Transcript{}, fmt.Errorf("copy audio data: %w", err)
	}

	model := c.model
	if model == "" {
		model = modelSize
	}
	if model != "" {
		w.WriteField("model", model)
	}
	if c.language != "" {
		w.WriteField("language", c.language)
	}
	w.WriteField("response_format", "verbose_json")
	w.WriteField("timestamp_granularities[]", "segment")
	w.WriteField("temperature", "0.00")
	if err := w.Close(); err != nil {
		return types.Transcript{}, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.Debug().Str("url", c.url).Str("model", model).Msg("sending transcription request")
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.Transcript{}, fmt.Errorf("transcription server status %d: %s", resp.StatusCode, truncate(string(body), 400))
	}

	var vr verboseResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return types.Transcript{}, fmt.Errorf("parse response: %w", err)
	}
	c.log.Debug().
		Int("segments", len(vr.Segments)).
		Str("language", vr.Language).
		Dur("elapsed", time.Since(start)).
		Msg("transcription received")

	tr := types.Transcript{Segments: make([]types.Segment, 0, len(vr.Segments))}
	for _, s := range vr.Segments {
		tr.Segments = append(tr.Segments, types.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}
	return tr, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
