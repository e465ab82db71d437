package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/video-system/go-hwscan/pkg/config"
	"github.com/video-system/go-hwscan/pkg/hwscan"
	"github.com/video-system/go-hwscan/pkg/native"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	library    string
	fixture    string
	static     bool
	logLevel   string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "hwscan",
		Short:         "Report hardware video encode/decode capabilities",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file")
	flags.StringVar(&a.library, "library", "", "Path to the scanner library")
	flags.BoolVar(&a.static, "static", false, "Use the scanner linked at build time")
	flags.StringVar(&a.fixture, "fixture", "", "Replay a native fixture (YAML) instead of scanning")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newListCmd(a),
		newServeCmd(a),
		newLayoutCmd(a),
		newPublishCmd(a),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags override the file.
	flags := cmd.Flags()
	if flags.Changed("library") {
		cfg.Library.Path = a.library
	}
	if flags.Changed("static") {
		cfg.Library.Static = a.static
	}
	if flags.Changed("fixture") {
		cfg.Fixture = a.fixture
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger
	return nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// openLibrary returns the configured scanner and a function releasing it.
func (a *app) openLibrary() (native.Library, func(), error) {
	switch {
	case a.cfg.Fixture != "":
		lib, err := native.OpenFixture(a.cfg.Fixture)
		if err != nil {
			return nil, nil, err
		}
		a.log.Info("replaying fixture", zap.String("path", a.cfg.Fixture))
		return lib, func() {}, nil

	case a.cfg.Library.Static:
		lib, err := native.OpenStatic()
		if err != nil {
			return nil, nil, err
		}
		a.log.Info("using linked scanner")
		return lib, func() {}, nil

	default:
		lib, err := native.Open(a.cfg.Library.Path)
		if err != nil {
			return nil, nil, err
		}
		a.log.Info("loaded scanner library", zap.String("path", lib.Path()))
		return lib, a.closer(lib), nil
	}
}

func (a *app) closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			a.log.Warn("close scanner library", zap.Error(err))
		}
	}
}

func (a *app) newScanner(lib native.Library) *hwscan.Scanner {
	return hwscan.NewScanner(lib, hwscan.WithLogger(a.log.Named("scan")))
}
