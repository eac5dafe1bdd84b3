package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeRules writes content to a relative path under a fresh working
// directory, since absolute paths are rejected.
func writeRules(t *testing.T, content string) string {
	t.Helper()
	t.Chdir(t.TempDir())
	if err := os.WriteFile("rules.yaml", []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	return "rules.yaml"
}

func TestRunBuiltInTable(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	t.Chdir(root)
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-strict"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected success, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "9 relationship type(s)") {
		t.Fatalf("unexpected output: %s", stdout.String())
	}
}

func TestRunRejectsUnknownElementType(t *testing.T) {
	path := writeRules(t, strings.Join([]string{
		"relationships:",
		"  - type: OWNS",
		"    from: [Department]",
		"    to: [Application]",
		"",
	}, "\n"))
	if _, err := run(path); err == nil || !strings.Contains(err.Error(), "unknown element type") {
		t.Fatalf("expected unknown element type error, got %v", err)
	}
}

func TestRunEmptyRelationships(t *testing.T) {
	path := writeRules(t, "relationships: []\n")
	if _, err := run(path); err == nil || !strings.Contains(err.Error(), "relationships entry is empty") {
		t.Fatalf("expected empty relationships error, got %v", err)
	}
}

func TestRunRejectsPaths(t *testing.T) {
	for _, p := range []string{"", "/etc/rules.yaml", "../rules.yaml"} {
		if _, err := run(p); err == nil {
			t.Fatalf("expected path %q to be rejected", p)
		}
	}
}

func TestCLIReportsDrift(t *testing.T) {
	path := writeRules(t, strings.Join([]string{
		"relationships:",
		"  - type: DEPENDS_ON",
		"    from: [Application]",
		"    to: [Application, Technology]",
		"  - type: OWNS",
		"    from: [Programme]",
		"    to: [Application]",
		"",
	}, "\n"))

	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-rules", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("drift without -strict must pass, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"- DECOMPOSES_TO",
		"+ OWNS Programme -> Application",
		"~ DEPENDS_ON Application -> Application,Technology (was Application -> Application)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}

	stdout.Reset()
	stderr.Reset()
	if code := cli([]string{"-rules", path, "-strict"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected strict failure, got %d", code)
	}
}

func TestCLIBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-nope"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected usage error, got %d", code)
	}
}
