package watcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		previous Reading
		current  Reading
		want     Outcome
	}{
		{"absent current", Present("x"), Absent(), OutcomeUnavailable},
		{"absent both", Absent(), Absent(), OutcomeUnavailable},
		{"first value", Absent(), Present("x"), OutcomeSeed},
		{"first empty value", Absent(), Present(""), OutcomeSeed},
		{"same", Present("x"), Present("x"), OutcomeUnchanged},
		{"same empty", Present(""), Present(""), OutcomeUnchanged},
		{"changed", Present("x"), Present("y"), OutcomeChange},
		{"emptied", Present("x"), Present(""), OutcomeChange},
		{"filled", Present(""), Present("x"), OutcomeChange},
		{"trailing space counts", Present("x"), Present("x "), OutcomeChange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.previous, tt.current)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want == OutcomeSeed || tt.want == OutcomeChange, got.Mutates())
		})
	}
}

func TestFormatChange(t *testing.T) {
	require.Equal(t, "B: y -> *z*", FormatChange("B", "y", "z"))
	require.Equal(t, "B: (empty) -> *z*", FormatChange("B", "", "z"))
	require.Equal(t, "B: y -> *(empty)*", FormatChange("B", "y", ""))
}

func TestReadingAbsentIsNotEmpty(t *testing.T) {
	v, ok := Absent().Get()
	require.False(t, ok)
	require.Empty(t, v)
	require.True(t, Present("").IsPresent())
	require.NotEqual(t, Absent(), Present(""))
	require.Equal(t, "<absent>", Absent().String())
}
