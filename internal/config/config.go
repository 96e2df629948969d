// Package config loads and validates sheetwatch settings from the process
// environment, optionally primed from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
)

// Environment variable names.
const (
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvSpreadsheetID   = "SPREADSHEET_ID"
	EnvWorksheetName   = "WORKSHEET_NAME"
	EnvCell            = "CELL"
	EnvNotifier        = "NOTIFIER"
	EnvTelegramToken   = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID  = "TELEGRAM_CHAT_ID"
	EnvTelegramAPIURL  = "TELEGRAM_API_URL"
	EnvNATSURL         = "NATS_URL"
	EnvNATSSubject     = "NATS_SUBJECT"
	EnvPollInterval    = "POLL_INTERVAL_SECONDS"
	EnvStateFile       = "STATE_FILE"
	EnvStateBackend    = "STATE_BACKEND"
	EnvCellsConfigFile = "CELLS_CONFIG_FILE"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
	EnvMetricsAddr     = "METRICS_ADDR"
)

// Defaults applied when a variable is unset or empty.
const (
	DefaultCredentialsFile = "service-account.json"
	DefaultWorksheetName   = "Sheet1"
	DefaultCell            = "A1"
	DefaultTelegramAPIURL  = "https://api.telegram.org"
	DefaultNATSSubject     = "sheetwatch.changes"
	DefaultPollInterval    = 60
	DefaultStateFile       = "state.json"
	DefaultCellsConfigFile = "cells_config.json"
	DefaultEnvFile         = ".env"
)

// Config holds every recognized setting.
type Config struct {
	CredentialsFile string

	// Default target descriptor; also the fallback for registry entries.
	SpreadsheetID string
	WorksheetName string
	Cell          string

	Notifier         NotifierKind
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string
	NATSURL          string
	NATSSubject      string

	PollIntervalSeconds int
	StateFile           string
	StateBackend        StateBackend
	CellsConfigFile     string

	LogLevel    LogLevel
	LogFormat   LogFormat
	MetricsAddr string

	// rawPollInterval keeps the unparsed value so Validate can report it.
	rawPollInterval string
}

// LookupFunc resolves an environment variable; os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadEnvFile primes the process environment from a dotenv file. Variables
// already present in the environment are not overwritten. A missing default
// file is not an error; a missing explicitly requested file is.
func LoadEnvFile(path string, explicit bool) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.WrapError(err, errors.CategoryConfig, "env file not readable").
			Fatal().
			WithContext("path", path).
			Build()
	}
	if err := godotenv.Load(path); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "parse env file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}

// Load reads an optional env file, builds the configuration from the process
// environment and validates it.
func Load(envFile string) (*Config, error) {
	if err := LoadEnvFile(envFile, envFile != ""); err != nil {
		return nil, err
	}
	cfg := FromLookup(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromLookup builds a Config from lookup, applying defaults to unset keys. A
// key that is set but empty stays empty so Validate can report it. FromLookup
// never fails; problems are reported by Validate.
func FromLookup(lookup LookupFunc) *Config {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		CredentialsFile:  get(EnvCredentialsFile, DefaultCredentialsFile),
		SpreadsheetID:    get(EnvSpreadsheetID, ""),
		WorksheetName:    get(EnvWorksheetName, DefaultWorksheetName),
		Cell:             get(EnvCell, DefaultCell),
		Notifier:         NormalizeNotifier(get(EnvNotifier, string(NotifierTelegram))),
		TelegramBotToken: get(EnvTelegramToken, ""),
		TelegramChatID:   get(EnvTelegramChatID, ""),
		TelegramAPIURL:   strings.TrimRight(get(EnvTelegramAPIURL, DefaultTelegramAPIURL), "/"),
		NATSURL:          get(EnvNATSURL, ""),
		NATSSubject:      get(EnvNATSSubject, DefaultNATSSubject),
		StateFile:        get(EnvStateFile, DefaultStateFile),
		StateBackend:     NormalizeStateBackend(get(EnvStateBackend, string(StateBackendJSON))),
		CellsConfigFile:  get(EnvCellsConfigFile, DefaultCellsConfigFile),
		LogLevel:         NormalizeLogLevel(get(EnvLogLevel, string(LogLevelInfo))),
		LogFormat:        NormalizeLogFormat(get(EnvLogFormat, string(LogFormatText))),
		MetricsAddr:      get(EnvMetricsAddr, ""),
		rawPollInterval:  get(EnvPollInterval, strconv.Itoa(DefaultPollInterval)),
	}
	if n, err := strconv.Atoi(cfg.rawPollInterval); err == nil {
		cfg.PollIntervalSeconds = n
	}
	return cfg
}

// String renders the configuration with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("notifier=%s interval=%ds state=%s(%s) cells=%s spreadsheet=%s worksheet=%s token=%s",
		c.Notifier, c.PollIntervalSeconds, c.StateFile, c.StateBackend, c.CellsConfigFile,
		c.SpreadsheetID, c.WorksheetName, mask(c.TelegramBotToken))
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
