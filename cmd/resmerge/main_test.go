package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Typos within edit distance 2
		{"merg", "merge"},
		{"mrege", "merge"},
		{"updte", "update"},
		{"upadte", "update"},
		{"inspct", "inspect"},
		{"wacth", "watch"},
		{"manifets", "manifest"},
		{"mpc", "mcp"},
		{"versio", "version"},
		{"hep", "help"},

		// Too far - no suggestion (distance > 2)
		{"xyz", ""},
		{"foobar", ""},
		{"mergerator", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestCommand(tt.input))
		})
	}
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("merge", "merge"))
	assert.Equal(t, 1, editDistance("merg", "merge"))
	assert.Equal(t, 2, editDistance("mrege", "merge"))
	assert.Equal(t, 5, editDistance("", "merge"))
	assert.Equal(t, 3, editDistance("kitten", "sitting"))
}
