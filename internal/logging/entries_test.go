// pattern: Functional Core

package logging

import (
	"testing"
	"time"
)

func TestLogEntry_String(t *testing.T) {
	e := LogEntry{
		Time:    time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:   "WARN",
		Scope:   "hub",
		Message: "launch failed",
		Fields:  map[string]any{"project": "/p/Game", "error": "not found"},
	}

	want := "09:26:53 WARN  [hub] launch failed error=not found project=/p/Game"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLogEntry_AtLeast(t *testing.T) {
	tests := []struct {
		level string
		min   string
		want  bool
	}{
		{"ERROR", "warn", true},
		{"WARN", "warn", true},
		{"INFO", "warn", false},
		{"DEBUG", "debug", true},
		{"INFO", "bogus", true},
	}

	for _, tt := range tests {
		t.Run(tt.level+">="+tt.min, func(t *testing.T) {
			if got := (LogEntry{Level: tt.level}).AtLeast(tt.min); got != tt.want {
				t.Errorf("AtLeast(%q) = %v, want %v", tt.min, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"dpanic", "ERROR"},
		{" warn ", "WARN"},
		{"", "INFO"},
		{"verbose", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
