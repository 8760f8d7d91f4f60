package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/forPelevin/ytclip/internal/config"
	"github.com/forPelevin/ytclip/internal/logging"
	"github.com/forPelevin/ytclip/internal/metrics"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

func NewRouter(cfg config.ServerConfig, runner Runner, finals FinalStore, version string, startTime time.Time, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer)
	r.Use(cors.Handler(CORSOptions(cfg.CORSOrigins)))
	r.Use(metrics.InstrumentHandler)

	clips := NewClipsHandler(runner, finals, cfg.MaxConcurrentRuns, cfg.SubmitRate, cfg.SubmitBurst)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", NewHealthHandler(version, startTime).ServeHTTP)
		r.Post("/clips", clips.Create)
		r.Get("/artifacts/final/{name}", clips.Final)
	})
	return r
}

// NewServer has no write timeout: a clip request holds its connection for
// the whole run.
func NewServer(cfg config.ServerConfig, runner Runner, finals FinalStore, version string, log zerolog.Logger) *Server {
	log = logging.WithComponent(log, "http")
	return &Server{
		http: &http.Server{
			Addr:        cfg.Addr,
			Handler:     NewRouter(cfg, runner, finals, version, time.Now(), log),
			ReadTimeout: cfg.ReadTimeout,
			IdleTimeout: cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
