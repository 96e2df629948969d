package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
)

var testDefaults = Defaults{SpreadsheetID: "default-sheet", WorksheetName: "Sheet1"}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSONPreservesOrder(t *testing.T) {
	path := writeFile(t, "cells_config.json", `{
  "cells": [
    {"spreadsheet_id": "s1", "worksheet_name": "Data", "cell_id": "b2", "display_name": "B"},
    {"spreadsheet_id": "s1", "worksheet_name": "Data", "cell_id": "A1", "display_name": "A"}
  ]
}`)

	targets, err := Load(path, testDefaults)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	require.Equal(t, "B", targets[0].DisplayName)
	require.Equal(t, "B2", targets[0].CellID)
	require.Equal(t, "A", targets[1].DisplayName)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "cells.yaml", `
cells:
  - cell_id: C3
    display_name: Stock
  - spreadsheet_id: other
    worksheet_name: Q1 Numbers
    cell_id: D4
    display_name: Margin
`)

	targets, err := Load(path, testDefaults)
	require.NoError(t, err)
	require.Equal(t, []Target{
		{SpreadsheetID: "default-sheet", WorksheetName: "Sheet1", CellID: "C3", DisplayName: "Stock"},
		{SpreadsheetID: "other", WorksheetName: "Q1 Numbers", CellID: "D4", DisplayName: "Margin"},
	}, targets)
}

func TestLoad_EmptyListAllowed(t *testing.T) {
	path := writeFile(t, "cells.json", `{"cells": []}`)

	targets, err := Load(path, testDefaults)
	require.NoError(t, err)
	require.Empty(t, targets)
}

func TestLoad_FatalErrors(t *testing.T) {
	cases := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{"malformed json", "c.json", `{"cells": [`, "invalid JSON"},
		{"malformed yaml", "c.yml", "cells: [\n  - {", "invalid YAML"},
		{"missing cell id", "c.json", `{"cells": [{"display_name": "A"}]}`, "cells[0]: missing required field(s): cell_id"},
		{"missing display name", "c.json", `{"cells": [{"cell_id": "A1"}, {"cell_id": "B1"}]}`, "display_name"},
		{"duplicate names", "c.json", `{"cells": [{"cell_id": "A1", "display_name": "X"}, {"cell_id": "B1", "display_name": "X"}]}`, "duplicates cells[0]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.content), testDefaults)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.contains)
			require.True(t, errors.HasCategory(err, errors.CategoryRegistry))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), testDefaults)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryRegistry))
	require.Contains(t, err.Error(), "not found")
}

func TestLoad_MissingDefaultsAreReported(t *testing.T) {
	path := writeFile(t, "c.json", `{"cells": [{"cell_id": "A1", "display_name": "A"}]}`)

	_, err := Load(path, Defaults{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "spreadsheet_id, worksheet_name")
}

func TestTarget_A1Range(t *testing.T) {
	require.Equal(t, "'Sheet1'!A1", Target{WorksheetName: "Sheet1", CellID: "A1"}.A1Range())
	require.Equal(t, "'A1'!B2", Target{WorksheetName: "A1", CellID: "B2"}.A1Range())
	require.Equal(t, "'Q1-2024 (draft)'!D4", Target{WorksheetName: "Q1-2024 (draft)", CellID: "D4"}.A1Range())
	require.Equal(t, "'Q1 Numbers'!B2", Target{WorksheetName: "Q1 Numbers", CellID: "B2"}.A1Range())
	require.Equal(t, "'Bob''s'!C3", Target{WorksheetName: "Bob's", CellID: "C3"}.A1Range())
}

func TestSample_RoundTrips(t *testing.T) {
	for _, name := range []string{"cells.json", "cells.yaml"} {
		t.Run(name, func(t *testing.T) {
			data, err := Sample(name, testDefaults)
			require.NoError(t, err)
			targets, err := Parse(data, formatFor(name), Defaults{})
			require.NoError(t, err)
			require.Len(t, targets, 2)
			require.Equal(t, "default-sheet", targets[0].SpreadsheetID)
		})
	}
}
