package main

import (
	"maps"
	"strings"
	"testing"
)

func TestParseExport(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[string]string
		expectedErr string
	}{
		{
			name:  "known keys",
			input: `{"srs-data":"{\"n1\":{\"nextReview\":1,\"level\":1}}","app-timer-seconds":"42","theme":"dark"}`,
			expected: map[string]string{
				"srs-data":          `{"n1":{"nextReview":1,"level":1}}`,
				"app-timer-seconds": "42",
			},
		},
		{
			name:  "bookmarks and streak",
			input: `{"tagalog_bookmarks":"[\"fd1\"]","daily-streak-data":"{\"currentStreak\":1}"}`,
			expected: map[string]string{
				"tagalog_bookmarks": `["fd1"]`,
				"daily-streak-data": `{"currentStreak":1}`,
			},
		},
		{name: "not json", input: `nope`, expectedErr: "decode export"},
		{name: "invalid srs", input: `{"srs-data":"{broken"}`, expectedErr: "validate srs-data"},
		{name: "invalid timer", input: `{"app-timer-seconds":"1m"}`, expectedErr: "validate app-timer-seconds"},
		{name: "nothing known", input: `{"theme":"dark"}`, expectedErr: "no known keys"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExport(strings.NewReader(tt.input))
			if tt.expectedErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectedErr) {
					t.Fatalf("Expected error containing '%s', but got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseExport() returned an unexpected error: %v", err)
			}
			if !maps.Equal(got, tt.expected) {
				t.Errorf("Expected %v, but got %v", tt.expected, got)
			}
		})
	}
}
