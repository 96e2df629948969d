// Package registry loads the ordered list of watch targets from a JSON or
// YAML file.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/logfields"
)

// Target is a single watched cell. DisplayName is its identity and is unique
// within a registry. Targets are immutable after Load.
type Target struct {
	SpreadsheetID string `json:"spreadsheet_id" yaml:"spreadsheet_id"`
	WorksheetName string `json:"worksheet_name" yaml:"worksheet_name"`
	CellID        string `json:"cell_id" yaml:"cell_id"`
	DisplayName   string `json:"display_name" yaml:"display_name"`
}

// A1Range renders the target as an A1 range, e.g. 'Sheet 1'!B2. The sheet
// name is always quoted so names like "A1" are not read as cell references.
func (t Target) A1Range() string {
	return "'" + strings.ReplaceAll(t.WorksheetName, "'", "''") + "'!" + t.CellID
}

func (t Target) String() string {
	return fmt.Sprintf("%s: %s/%s!%s", t.DisplayName, t.SpreadsheetID, t.WorksheetName, t.CellID)
}

// Defaults fill the location fields an entry leaves out.
type Defaults struct {
	SpreadsheetID string
	WorksheetName string
}

type file struct {
	Cells []Target `json:"cells" yaml:"cells"`
}

// Load reads the registry at path. Any problem is a fatal registry error.
func Load(path string, defaults Defaults) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.RegistryError("cells config file not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryRegistry, "read cells config").
			Fatal().
			WithContext("path", path).
			Build()
	}

	targets, err := Parse(data, formatFor(path), defaults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Info("Loaded cell configurations", logfields.Path(path), logfields.Count(len(targets)))
	return targets, nil
}

// Format is the registry file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates registry content.
func Parse(data []byte, format Format, defaults Defaults) ([]Target, error) {
	var f file
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRegistry, fmt.Sprintf("invalid %s in cells config", strings.ToUpper(string(format)))).
			Fatal().
			Build()
	}

	seen := make(map[string]int, len(f.Cells))
	targets := make([]Target, 0, len(f.Cells))
	for i, t := range f.Cells {
		t = normalize(t, defaults)
		if missing := missingFields(t); len(missing) > 0 {
			return nil, errors.RegistryError(fmt.Sprintf("cells[%d]: missing required field(s): %s", i, strings.Join(missing, ", "))).
				WithContext("index", i).
				Build()
		}
		if prev, dup := seen[t.DisplayName]; dup {
			return nil, errors.RegistryError(fmt.Sprintf("cells[%d]: display_name %q duplicates cells[%d]", i, t.DisplayName, prev)).
				WithContext("index", i).
				Build()
		}
		seen[t.DisplayName] = i
		targets = append(targets, t)
	}
	return targets, nil
}

func normalize(t Target, d Defaults) Target {
	t.SpreadsheetID = strings.TrimSpace(t.SpreadsheetID)
	t.WorksheetName = strings.TrimSpace(t.WorksheetName)
	t.CellID = strings.ToUpper(strings.TrimSpace(t.CellID))
	t.DisplayName = strings.TrimSpace(t.DisplayName)
	if t.SpreadsheetID == "" {
		t.SpreadsheetID = d.SpreadsheetID
	}
	if t.WorksheetName == "" {
		t.WorksheetName = d.WorksheetName
	}
	return t
}

func missingFields(t Target) []string {
	var missing []string
	if t.SpreadsheetID == "" {
		missing = append(missing, "spreadsheet_id")
	}
	if t.WorksheetName == "" {
		missing = append(missing, "worksheet_name")
	}
	if t.CellID == "" {
		missing = append(missing, "cell_id")
	}
	if t.DisplayName == "" {
		missing = append(missing, "display_name")
	}
	return missing
}

// Sample returns an example registry in the format implied by path.
func Sample(path string, defaults Defaults) ([]byte, error) {
	spreadsheet := defaults.SpreadsheetID
	if spreadsheet == "" {
		spreadsheet = "your-spreadsheet-id"
	}
	f := file{Cells: []Target{
		{SpreadsheetID: spreadsheet, WorksheetName: "Sheet1", CellID: "A1", DisplayName: "Revenue"},
		{SpreadsheetID: spreadsheet, WorksheetName: "Sheet1", CellID: "B2", DisplayName: "Open tickets"},
	}}
	if formatFor(path) == FormatYAML {
		return yaml.Marshal(f)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
