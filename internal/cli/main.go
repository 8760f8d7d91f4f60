package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forPelevin/ytclip/internal/types"
)

var version = "dev"

// Exit codes: 1 when the caller can fix the request, 2 when the environment
// (tools, network, disk) failed.
const (
	exitInput       = 1
	exitEnvironment = 2
)

func Main() {
	os.Exit(Execute(os.Args[1:]))
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitCode(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ytclip <url>",
		Short:         "Cut a subtitled highlight clip from a video URL",
		Version:       version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file (default ytclip.yaml if present)")
	pf.String("env-file", "", "dotenv file (default .env if present)")
	pf.String("log-level", "", "debug|info|warn|error")
	pf.String("out", "", "Output root directory")

	root.Flags().Int("start", -1, "Explicit clip start in seconds; skips highlight detection")
	root.Flags().Int("duration", 0, "Clip duration in seconds (default from config, 25)")
	root.Flags().String("model", "", "Transcription model size (default from config, small)")
	root.Flags().String("cut-mode", "", "copy|reencode")
	root.Flags().Bool("json", false, "Print the result as JSON")

	root.AddCommand(newServeCmd())
	return root
}

func exitCode(err error) int {
	if pe, ok := types.AsPipelineError(err); ok {
		if pe.InputFault {
			return exitInput
		}
		return exitEnvironment
	}
	var ue usageError
	if errors.As(err, &ue) {
		return exitInput
	}
	return exitEnvironment
}

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }
