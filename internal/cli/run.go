package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/forPelevin/ytclip/internal/config"
	"github.com/forPelevin/ytclip/internal/logging"
	"github.com/forPelevin/ytclip/internal/pipeline"
)

func run(cmd *cobra.Command, source string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req := pipeline.Request{Source: source}
	if cmd.Flags().Changed("start") {
		start, _ := cmd.Flags().GetInt("start")
		if start < 0 {
			return usageError{fmt.Errorf("--start must be >= 0, got %d", start)}
		}
		req.Start = &start
	}
	req.DurationSeconds, _ = cmd.Flags().GetInt("duration")
	req.ModelSize, _ = cmd.Flags().GetString("model")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.New(cfg, log).Run(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintf(out, "window: %ds +%ds (%s)\n", res.Window.StartSeconds, res.Window.DurationSeconds, res.Signal)
	fmt.Fprintf(out, "captions: %s (%d cues)\n", res.Captions.Path, res.Cues)
	fmt.Fprintln(out, res.Final.Path)
	return nil
}

// loadConfig layers config sources and applies persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	o := config.Overrides{}
	o.File, _ = cmd.Flags().GetString("config")
	o.EnvFile, _ = cmd.Flags().GetString("env-file")
	o.LogLevel, _ = cmd.Flags().GetString("log-level")
	o.OutputRoot, _ = cmd.Flags().GetString("out")
	if f := cmd.Flags().Lookup("cut-mode"); f != nil {
		o.CutMode = f.Value.String()
	}
	if f := cmd.Flags().Lookup("addr"); f != nil {
		o.HTTPAddr = f.Value.String()
	}

	cfg, err := config.Load(o)
	if err != nil {
		return nil, zerolog.Nop(), usageError{fmt.Errorf("config: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), usageError{fmt.Errorf("config: %w", err)}
	}
	return cfg, logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat), nil
}
