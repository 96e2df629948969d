package config

import "strings"

// NotifierKind selects the notification transport.
type NotifierKind string

const (
	NotifierTelegram NotifierKind = "telegram"
	NotifierNATS     NotifierKind = "nats"
	NotifierLog      NotifierKind = "log"
)

// NormalizeNotifier returns the typed notifier kind, or "" for unknown input.
func NormalizeNotifier(raw string) NotifierKind {
	switch NotifierKind(strings.ToLower(strings.TrimSpace(raw))) {
	case NotifierTelegram:
		return NotifierTelegram
	case NotifierNATS:
		return NotifierNATS
	case NotifierLog:
		return NotifierLog
	default:
		return ""
	}
}

// StateBackend selects the StateRecord persistence backend.
type StateBackend string

const (
	StateBackendJSON   StateBackend = "json"
	StateBackendSQLite StateBackend = "sqlite"
)

// NormalizeStateBackend returns the typed backend, or "" for unknown input.
func NormalizeStateBackend(raw string) StateBackend {
	switch StateBackend(strings.ToLower(strings.TrimSpace(raw))) {
	case StateBackendJSON:
		return StateBackendJSON
	case StateBackendSQLite:
		return StateBackendSQLite
	default:
		return ""
	}
}
