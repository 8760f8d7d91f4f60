package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultFile = "ytclip.yaml"

type Config struct {
	Output OutputConfig `yaml:"output"`

	ResourceDir        string `yaml:"resource_dir" env:"RESOURCE_DIR"`
	CookiesFile        string `yaml:"cookies_file" env:"COOKIES_FILE"`
	CookiesFromBrowser string `yaml:"cookies_from_browser" env:"COOKIES_FROM_BROWSER"`

	FFmpegPath         string `yaml:"ffmpeg_path" env:"FFMPEG_PATH"`
	FFprobePath        string `yaml:"ffprobe_path" env:"FFPROBE_PATH"`
	YtDlpPath          string `yaml:"ytdlp_path" env:"YTDLP_PATH"`
	YtDlpFormat        string `yaml:"ytdlp_format" env:"YTDLP_FORMAT"`
	CutMode            string `yaml:"cut_mode" env:"CUT_MODE"`
	AnalysisSampleRate int    `yaml:"analysis_sample_rate" env:"ANALYSIS_SAMPLE_RATE"`

	Whisper WhisperConfig `yaml:"whisper"`

	DefaultDuration int           `yaml:"default_duration" env:"DEFAULT_DURATION"`
	MaxDuration     int           `yaml:"max_duration" env:"MAX_DURATION"`
	RunTimeout      time.Duration `yaml:"run_timeout" env:"RUN_TIMEOUT"`

	Caption CaptionStyle `yaml:"caption" envPrefix:"CAPTION_"`

	Server ServerConfig `yaml:"server"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
}

type OutputConfig struct {
	Root       string `yaml:"root" env:"OUTPUT_ROOT"`
	RawDir     string `yaml:"raw_dir" env:"RAW_DIR"`
	SegmentDir string `yaml:"segment_dir" env:"SEGMENT_DIR"`
	CaptionDir string `yaml:"caption_dir" env:"CAPTION_DIR"`
	FinalDir   string `yaml:"final_dir" env:"FINAL_DIR"`
	CacheDir   string `yaml:"cache_dir" env:"CACHE_DIR"`
}

type WhisperConfig struct {
	Bin       string `yaml:"bin" env:"WHISPER_BIN"`
	ModelDir  string `yaml:"model_dir" env:"WHISPER_MODEL_DIR"`
	ModelSize string `yaml:"model" env:"WHISPER_MODEL"`
	// URL switches transcription to an OpenAI-compatible HTTP server.
	URL      string        `yaml:"url" env:"TRANSCRIBER_URL"`
	APIModel string        `yaml:"api_model" env:"TRANSCRIBER_MODEL"`
	APIKey   string        `yaml:"api_key" env:"TRANSCRIBER_API_KEY"`
	Language string        `yaml:"language" env:"TRANSCRIBER_LANGUAGE"`
	Timeout  time.Duration `yaml:"timeout" env:"TRANSCRIBER_TIMEOUT"`
}

// CaptionStyle is the fixed styling burned onto the final render.
type CaptionStyle struct {
	FontName      string `yaml:"font_name" env:"FONT_NAME"`
	FontSize      int    `yaml:"font_size" env:"FONT_SIZE"`
	PrimaryColour string `yaml:"primary_colour" env:"PRIMARY_COLOUR"`
	OutlineColour string `yaml:"outline_colour" env:"OUTLINE_COLOUR"`
	BorderStyle   int    `yaml:"border_style" env:"BORDER_STYLE"`
	Outline       int    `yaml:"outline" env:"OUTLINE"`
	Shadow        int    `yaml:"shadow" env:"SHADOW"`
	WrapStyle     int    `yaml:"wrap_style" env:"WRAP_STYLE"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr" env:"HTTP_ADDR"`
	MaxConcurrentRuns int           `yaml:"max_concurrent_runs" env:"MAX_CONCURRENT_RUNS"`
	SubmitRate        float64       `yaml:"submit_rate" env:"SUBMIT_RATE"`
	SubmitBurst       int           `yaml:"submit_burst" env:"SUBMIT_BURST"`
	CORSOrigins       []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	ReadTimeout       time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
}

// Overrides holds CLI flag values that take priority over everything else.
type Overrides struct {
	File       string
	EnvFile    string
	OutputRoot string
	CutMode    string
	LogLevel   string
	HTTPAddr   string
}

func Defaults() *Config {
	return &Config{
		Output: OutputConfig{
			Root:       "out",
			RawDir:     "raw",
			SegmentDir: "segments",
			CaptionDir: "captions",
			FinalDir:   "final",
			CacheDir:   ".cache",
		},
		ResourceDir:        ".",
		CookiesFile:        "cookies.txt",
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		YtDlpPath:          "yt-dlp",
		YtDlpFormat:        "mp4/bestvideo[ext=mp4]+bestaudio[ext=m4a]/best",
		CutMode:            "copy",
		AnalysisSampleRate: 8000,
		Whisper: WhisperConfig{
			Bin:       ".cache/bin/whisper.cpp",
			ModelDir:  ".cache/models",
			ModelSize: "small",
			APIModel:  "whisper-1",
			Timeout:   30 * time.Minute,
		},
		DefaultDuration: 25,
		MaxDuration:     180,
		RunTimeout:      3 * time.Hour,
		Caption: CaptionStyle{
			FontName:      "Anton",
			FontSize:      20,
			PrimaryColour: "&HFFFFFF",
			OutlineColour: "&H000000",
			BorderStyle:   1,
			Outline:       2,
			Shadow:        1,
			WrapStyle:     2,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			MaxConcurrentRuns: 2,
			SubmitRate:        1,
			SubmitBurst:       4,
			ReadTimeout:       10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load layers configuration.
// Priority: CLI flags > environment > .env file > YAML file > defaults.
func Load(o Overrides) (*Config, error) {
	cfg := Defaults()

	file := o.File
	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}
	if b, err := os.ReadFile(file); err == nil {
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	envFile := o.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if o.OutputRoot != "" {
		cfg.Output.Root = o.OutputRoot
	}
	if o.CutMode != "" {
		cfg.CutMode = o.CutMode
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.HTTPAddr != "" {
		cfg.Server.Addr = o.HTTPAddr
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.CutMode {
	case "copy", "reencode":
	default:
		return fmt.Errorf("cut mode must be copy or reencode, got %q", c.CutMode)
	}
	if c.FFmpegPath == "" || c.FFprobePath == "" || c.YtDlpPath == "" {
		return errors.New("ffmpeg, ffprobe and yt-dlp paths are required")
	}
	if c.Whisper.URL == "" && c.Whisper.Bin == "" {
		return errors.New("whisper bin is required when no transcriber url is set")
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("default duration must be > 0")
	}
	if c.MaxDuration < c.DefaultDuration {
		return fmt.Errorf("max duration must be >= default duration")
	}
	if c.AnalysisSampleRate <= 0 {
		return fmt.Errorf("analysis sample rate must be > 0")
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be > 0")
	}
	if c.Server.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("max concurrent runs must be > 0")
	}
	return nil
}
