package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinedText(t *testing.T) {
	testCases := []struct {
		name     string
		record   Record
		expected string
	}{
		{
			name:     "title and overview",
			record:   Record{Title: "Stalker", Overview: "A guide leads two men."},
			expected: "Stalker. A guide leads two men.",
		},
		{
			name:     "missing overview",
			record:   Record{Title: "Stalker"},
			expected: "Stalker. ",
		},
		{
			name:     "missing title",
			record:   Record{Overview: "A guide leads two men."},
			expected: ". A guide leads two men.",
		},
		{
			name:     "both missing",
			record:   Record{},
			expected: ". ",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.record.CombinedText())
		})
	}
}

func TestDefaultWorkerCount(t *testing.T) {
	n := DefaultWorkerCount()
	assert.Positive(t, n)
	assert.LessOrEqual(t, n, MaxWorkerCeiling)
}
