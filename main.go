package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fslog/internal/config"
)

// defaultPatterns is used when no log files are named on the command line.
var defaultPatterns = []string{"freeswitch.log*"}

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	logDir     string
	outputDir  string
	verbose    bool
	noColor    bool

	cfg config.Config
	log *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fslog: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "fslog",
		Short: "fslog - FreeSWITCH call log analyzer",
		Long: `fslog splits FreeSWITCH debug logs into per-call sessions, extracts the
signaling events of each call and classifies it as OK, WARNING or ERROR.

Log files are given as paths or glob patterns, relative to --log-dir. When
none are given, freeswitch.log* is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/fslog/config.yaml)")
	flags.StringVarP(&a.logDir, "log-dir", "r", "", "directory relative log patterns are resolved in")
	flags.StringVarP(&a.outputDir, "output", "o", "", "directory exported files are written to")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.resultCmd(),
		a.detailsCmd(),
		a.numbersCmd(),
		a.uuidsCmd(),
		a.filesCmd(),
		a.ignoredCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.pickCmd(),
	)
	return root
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-dir") {
		cfg.LogDir = a.logDir
	}
	if flags.Changed("output") {
		cfg.OutputDir = a.outputDir
	}
	if a.noColor {
		cfg.Color = false
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if a.verbose {
		level = zap.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger
	a.log.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("log_dir", cfg.LogDir),
		zap.Int("workers", cfg.Workers))
	return nil
}
