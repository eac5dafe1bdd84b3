// Command semantics-check validates a relationship semantics file and reports
// how it differs from the storage-time table compiled into archrepo.
package main

import (
	"archrepo/internal/core"
	"archrepo/pkg/domain"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var exitFunc = os.Exit

// main runs the command-line interface and exits with the status from cli.
func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("semantics-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var rulesPath string
	var strict bool
	fs.StringVar(&rulesPath, "rules", "internal/core/semantics_storage.yaml", "path to relationship semantics yaml")
	fs.BoolVar(&strict, "strict", false, "fail when the file differs from the built-in table")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	table, err := run(rulesPath)
	if err != nil {
		fmt.Fprintf(stderr, "Semantics validation failed: %v\n", err)
		return 1
	}
	drift := diffTables(core.StorageSemantics(), table)
	for _, line := range drift {
		fmt.Fprintln(stdout, line)
	}
	if strict && len(drift) > 0 {
		fmt.Fprintf(stderr, "Semantics differ from the built-in table in %d place(s).\n", len(drift))
		return 1
	}
	fmt.Fprintf(stdout, "Semantics validation passed: %d relationship type(s).\n", len(table.Types()))
	return 0
}

// validatePath keeps the rules file inside the working tree.
func validatePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("empty path")
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("absolute paths not allowed: %s", p)
	}
	clean := filepath.Clean(p)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", p)
	}
	return clean, nil
}

func run(rulesPath string) (*core.SemanticsTable, error) {
	safePath, err := validatePath(rulesPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(safePath) // #nosec G304: path validated by validatePath
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	table, err := core.ParseSemanticsYAML(data)
	if err != nil {
		return nil, err
	}
	if len(table.Types()) == 0 {
		return nil, errors.New("relationships entry is empty")
	}
	return table, nil
}

// diffTables describes every type added, removed or re-pointed in next
// relative to base.
func diffTables(base, next *core.SemanticsTable) []string {
	var out []string
	for _, typ := range base.Types() {
		if !next.IsKnownType(typ) {
			out = append(out, "- "+typ)
		}
	}
	for _, typ := range next.Types() {
		rule, _ := next.EndpointRule(typ)
		prev, ok := base.EndpointRule(typ)
		if !ok {
			out = append(out, fmt.Sprintf("+ %s %s -> %s", typ, join(rule.AllowedFrom), join(rule.AllowedTo)))
			continue
		}
		if join(prev.AllowedFrom) != join(rule.AllowedFrom) || join(prev.AllowedTo) != join(rule.AllowedTo) {
			out = append(out, fmt.Sprintf("~ %s %s -> %s (was %s -> %s)", typ,
				join(rule.AllowedFrom), join(rule.AllowedTo), join(prev.AllowedFrom), join(prev.AllowedTo)))
		}
	}
	return out
}

func join(cs []domain.Collection) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
