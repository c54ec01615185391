package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"image-selector/internal/config"
	"image-selector/internal/core"
	"image-selector/internal/services"
)

// ErrBatchFailed is returned when at least one item of a batch failed, so the
// process exits non-zero.
var ErrBatchFailed = errors.New("batch finished with failures")

// Options carries the pieces main provides. Decoder and RunGUI may be nil.
type Options struct {
	Version string
	Decoder services.Decoder
	RunGUI  func(*core.Services) error
}

type rootFlags struct {
	configPath string
	assetsDir  string
	logLevel   string
	jsonLogs   bool
}

// environment is built once per invocation by the root pre-run hook
type environment struct {
	services *core.Services
}

// NewRootCmd creates the root command. Without a subcommand it opens the
// desktop window.
func NewRootCmd(opts Options) *cobra.Command {
	var flags rootFlags
	env := &environment{}

	cmd := &cobra.Command{
		Use:           "image-selector",
		Short:         "Browse images and copy or delete them in bulk",
		Long:          "Image Selector lists bundled and saved images and runs confirmation-gated bulk copy and delete over a selection.",
		Version:       opts.Version,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := buildServices(cmd, flags, opts.Decoder)
			if err != nil {
				return err
			}
			env.services = svc
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if env.services != nil {
				env.services.Close()
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if opts.RunGUI == nil {
				return fmt.Errorf("desktop window is not available in this build")
			}
			return opts.RunGUI(env.services)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&flags.assetsDir, "assets-dir", "", "directory bundled images are read from and copies are written to")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&flags.jsonLogs, "json-logs", false, "write logs as JSON")

	cmd.AddCommand(
		newListCmd(env),
		newBatchCmd(env, batchCopy),
		newBatchCmd(env, batchDelete),
		newImportCmd(env),
	)
	return cmd
}

const rootCmdExample = `  # Open the desktop window
  image-selector

  # Show every candidate image
  image-selector list

  # Copy two bundled images after confirming
  image-selector copy img1 img3

  # Delete every candidate without prompting
  image-selector delete --all --yes

  # Save an external image so it shows up as a candidate
  image-selector import /path/to/photo.png`

func buildServices(cmd *cobra.Command, flags rootFlags, decoder services.Decoder) (*core.Services, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.assetsDir != "" {
		cfg.AssetsDir = flags.assetsDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs = flags.jsonLogs
	}

	return core.New(cfg, core.NewLogger(cfg), decoder)
}

// Execute runs the command line and returns the process exit code
func Execute(opts Options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd(opts).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
