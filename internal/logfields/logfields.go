package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTarget     = "target"
	KeyCell       = "cell"
	KeyCycleID    = "cycle_id"
	KeyPhase      = "phase"
	KeyBackoff    = "backoff"
	KeySleepUnits = "sleep_units"
	KeyPrevious   = "previous"
	KeyCurrent    = "current"
	KeyOutcome    = "outcome"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Target(name string) slog.Attr    { return slog.String(KeyTarget, name) }
func Cell(ref string) slog.Attr       { return slog.String(KeyCell, ref) }
func CycleID(id string) slog.Attr     { return slog.String(KeyCycleID, id) }
func Phase(p string) slog.Attr        { return slog.String(KeyPhase, p) }
func Backoff(units int) slog.Attr     { return slog.Int(KeyBackoff, units) }
func SleepUnits(units int) slog.Attr  { return slog.Int(KeySleepUnits, units) }
func Previous(v string) slog.Attr     { return slog.String(KeyPrevious, v) }
func Current(v string) slog.Attr      { return slog.String(KeyCurrent, v) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
