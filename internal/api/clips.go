package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/forPelevin/ytclip/internal/pipeline"
	"github.com/forPelevin/ytclip/internal/types"
)

// Runner executes one clip request synchronously.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (types.Result, error)
}

// FinalStore resolves a final artifact name to a path on disk.
type FinalStore interface {
	FinalPath(name string) (string, error)
}

type ClipsHandler struct {
	runner  Runner
	finals  FinalStore
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

func NewClipsHandler(runner Runner, finals FinalStore, maxConcurrent int, submitRate float64, burst int) *ClipsHandler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	limit := rate.Inf
	if submitRate > 0 {
		limit = rate.Limit(submitRate)
	}
	return &ClipsHandler{
		runner:  runner,
		finals:  finals,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		limiter: rate.NewLimiter(limit, max(burst, 1)),
	}
}

type clipRequest struct {
	URL      string `json:"url"`
	Start    *int   `json:"start,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Model    string `json:"model,omitempty"`
}

type clipResponse struct {
	types.Result
	FinalURL string `json:"final_url"`
}

// Create runs a clip job and answers once the final artifact exists. Runs
// beyond the concurrency limit wait for a slot until the client goes away.
func (h *ClipsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		WriteError(w, http.StatusTooManyRequests, "too many submissions, retry later")
		return
	}

	var body clipRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if body.URL == "" {
		WriteError(w, http.StatusBadRequest, "url is required")
		return
	}

	log := hlog.FromRequest(r)
	if err := h.sem.Acquire(r.Context(), 1); err != nil {
		log.Warn().Err(err).Msg("client left while waiting for a run slot")
		WriteError(w, http.StatusServiceUnavailable, "request cancelled while queued")
		return
	}
	defer h.sem.Release(1)

	res, err := h.runner.Run(r.Context(), pipeline.Request{
		Source:          body.URL,
		Start:           body.Start,
		DurationSeconds: body.Duration,
		ModelSize:       body.Model,
	})
	if err != nil {
		if pe, ok := types.AsPipelineError(err); ok {
			WritePipelineError(w, pe)
			return
		}
		log.Error().Err(err).Msg("run failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, clipResponse{
		Result:   res,
		FinalURL: "/api/v1/artifacts/final/" + filepath.Base(res.Final.Path),
	})
}

// Final serves a completed final artifact by file name.
func (h *ClipsHandler) Final(w http.ResponseWriter, r *http.Request) {
	p, err := h.finals.FinalPath(chi.URLParam(r, "name"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	fi, err := os.Stat(p)
	if err != nil || !fi.Mode().IsRegular() {
		if err == nil || errors.Is(err, os.ErrNotExist) {
			WriteError(w, http.StatusNotFound, "artifact not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, p)
}
