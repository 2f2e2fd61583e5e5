package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatLog(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		message  string
		expected string
	}{
		{name: "plain message gets tagged", tag: "ENGINE", message: "scoring started", expected: "[ENGINE] scoring started"},
		{name: "already tagged message untouched", tag: "ENGINE", message: "[HTTP] request", expected: "[HTTP] request"},
		{name: "empty tag keeps message", tag: "", message: "hello", expected: "hello"},
		{name: "whitespace trimmed", tag: " BOOT ", message: " ready ", expected: "[BOOT] ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLog(tt.tag, tt.message); got != tt.expected {
				t.Errorf("FormatLog() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestNewWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "info", Dir: dir, Filename: "server.log"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	logger.InfoTag("ENGINE", "analysis complete", map[string]interface{}{
		"trust_score": 87.5,
	})

	data, err := os.ReadFile(filepath.Join(dir, "server.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "analysis complete") {
		t.Errorf("log file missing message: %s", content)
	}
	if !strings.Contains(content, "trust_score") {
		t.Errorf("log file missing structured field: %s", content)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("DEBUG") != parseLevel("debug") {
		t.Error("level parsing should be case-insensitive")
	}
	if parseLevel("bogus") != parseLevel("info") {
		t.Error("unknown level should default to info")
	}
}
