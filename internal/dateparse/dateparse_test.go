package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrom(t *testing.T) {
	// Wednesday, 2024-01-17
	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected string
	}{
		{"today", "2024-01-17"},
		{"TODAY", "2024-01-17"},
		{"  Yesterday ", "2024-01-16"},

		{"last week", "2024-01-10"},
		{"lastweek", "2024-01-10"},
		{"last month", "2023-12-17"},
		{"som", "2024-01-01"},
		{"start of month", "2024-01-01"},

		// Most recent past occurrence from Wednesday Jan 17
		{"tuesday", "2024-01-16"},
		{"mon", "2024-01-15"},
		{"sunday", "2024-01-14"},
		{"thursday", "2024-01-11"},
		{"wednesday", "2024-01-10"}, // same day = a week ago
		{"last friday", "2024-01-12"},

		{"-0", "2024-01-17"},
		{"-3", "2024-01-14"},
		{"1 day ago", "2024-01-16"},
		{"10 days ago", "2024-01-07"},
		{"2 weeks ago", "2024-01-03"},

		{"2023-11-05", "2023-11-05"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrom(tt.input, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseFromMonthBoundary(t *testing.T) {
	ref := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	got, err := ParseFrom("yesterday", ref)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)
}

func TestParseFromRejectsUnknown(t *testing.T) {
	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

	for _, input := range []string{"", "tomorrow", "next week", "+3", "2024-13-01", "2024/01/01", "-x", "soon"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFrom(input, ref)
			assert.Error(t, err)
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("today"))
	assert.True(t, IsValid("2024-01-01"))
	assert.False(t, IsValid("someday"))
}
