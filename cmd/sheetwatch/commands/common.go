package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sheetwatch/internal/config"
	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/logfields"
	"git.home.luguber.info/inful/sheetwatch/internal/registry"
	"git.home.luguber.info/inful/sheetwatch/internal/sheets"
	"git.home.luguber.info/inful/sheetwatch/internal/state"
	"git.home.luguber.info/inful/sheetwatch/internal/watcher"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	EnvFile string           `name:"env-file" short:"e" help:"Dotenv file to prime the environment from (default .env, optional)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run   RunCmd   `cmd:"" default:"1" help:"Watch the configured cells until interrupted"`
	Check CheckCmd `cmd:"" help:"Read every configured cell once without touching state"`
	State StateCmd `cmd:"" help:"Print the persisted state record as JSON"`
	Init  InitCmd  `cmd:"" help:"Write a sample cells configuration file"`
}

// AfterApply runs after flag parsing; setup logging once. The env file is
// consulted here only for LOG_LEVEL and LOG_FORMAT; errors reading it are
// reported later by config.Load.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	_ = config.LoadEnvFile(c.EnvFile, false)

	level := config.NormalizeLogLevel(os.Getenv(config.EnvLogLevel))
	if c.Verbose {
		level = config.LogLevelDebug
	}
	format := config.NormalizeLogFormat(os.Getenv(config.EnvLogFormat))
	slog.SetDefault(config.NewLogger(os.Stderr, format, level))
	return nil
}

// newReader builds the cell reader; replaced in tests.
var newReader = func(ctx context.Context, cfg *config.Config) (watcher.CellReader, error) {
	client, err := sheets.New(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func registryDefaults(cfg *config.Config) registry.Defaults {
	return registry.Defaults{SpreadsheetID: cfg.SpreadsheetID, WorksheetName: cfg.WorksheetName}
}

func loadTargets(cfg *config.Config) ([]registry.Target, error) {
	targets, err := registry.Load(cfg.CellsConfigFile, registryDefaults(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded cells configuration",
		logfields.Path(cfg.CellsConfigFile),
		logfields.Count(len(targets)))
	return targets, nil
}

func openStore(cfg *config.Config) (state.Store, error) {
	store, err := state.Open(cfg.StateBackend, cfg.StateFile)
	if err != nil {
		return nil, errors.StateError(err, "open state store").
			Fatal().
			WithContext("path", cfg.StateFile).
			Build()
	}
	return store, nil
}
