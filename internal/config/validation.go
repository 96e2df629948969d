package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
)

// Validate reports every missing required key in one error, then any
// malformed values.
func (c *Config) Validate() error {
	if missing := c.MissingKeys(); len(missing) > 0 {
		return errors.ConfigError(fmt.Sprintf("missing required configuration: %s", strings.Join(missing, ", "))).
			WithContext("missing", missing).
			Build()
	}

	var problems []string
	if c.PollIntervalSeconds <= 0 {
		problems = append(problems, fmt.Sprintf("%s must be a positive integer, got %q", EnvPollInterval, c.rawPollInterval))
	}
	if c.Notifier == "" {
		problems = append(problems, fmt.Sprintf("%s must be one of telegram, nats, log", EnvNotifier))
	}
	if c.StateBackend == "" {
		problems = append(problems, fmt.Sprintf("%s must be one of json, sqlite", EnvStateBackend))
	}
	if len(problems) > 0 {
		return errors.ValidationError("invalid configuration: " + strings.Join(problems, "; ")).Build()
	}
	return nil
}

// MissingKeys lists the required keys that are unset, in a stable order.
// Transport keys depend on the selected notifier.
func (c *Config) MissingKeys() []string {
	var missing []string
	check := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	check(EnvSpreadsheetID, c.SpreadsheetID)
	check(EnvWorksheetName, c.WorksheetName)
	check(EnvCell, c.Cell)

	switch c.Notifier {
	case NotifierTelegram:
		check(EnvTelegramToken, c.TelegramBotToken)
		check(EnvTelegramChatID, c.TelegramChatID)
	case NotifierNATS:
		check(EnvNATSURL, c.NATSURL)
		check(EnvNATSSubject, c.NATSSubject)
	}
	return missing
}
