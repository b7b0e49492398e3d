package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestVersionCmd tests version command output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "doccrawl version") {
		t.Errorf("expected version line in output:\n%s", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Errorf("expected commit line in output:\n%s", output)
	}
	if !strings.Contains(output, "built:") {
		t.Errorf("expected build date line in output:\n%s", output)
	}
}

// TestGetVersion tests version resolution fallbacks.
func TestGetVersion(t *testing.T) {
	// Not parallel: mutates package-level version variables.
	orig := version
	defer func() { version = orig }()

	version = "1.2.3"
	if got := getVersion(); got != "1.2.3" {
		t.Errorf("getVersion() = %q, expected ldflags value", got)
	}

	version = ""
	if got := getVersion(); got == "" {
		t.Error("getVersion() should never be empty")
	}
}

// TestGetCommit tests commit resolution fallbacks.
func TestGetCommit(t *testing.T) {
	// Not parallel: mutates package-level version variables.
	orig := commit
	defer func() { commit = orig }()

	commit = "abcdef1"
	if got := getCommit(); got != "abcdef1" {
		t.Errorf("getCommit() = %q, expected ldflags value", got)
	}

	commit = ""
	if got := getCommit(); got == "" {
		t.Error("getCommit() should never be empty")
	}
}
