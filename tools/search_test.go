package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func searchFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"main.go":        "package main\n\nfunc main() {}\n",
		"util.go":        "package main\n\nfunc helper() {}\n",
		"notes.txt":      "just some notes\nfunc is mentioned here\n",
		"sub/deep.go":    "package sub\n\nfunc deep() {}\n",
		"sub/readme.txt": "nothing to see\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestGlobMatchesBasenamesRecursively(t *testing.T) {
	dir := searchFixture(t)
	r := testRegistry(t)

	out, err := execute(t, r, "glob", map[string]interface{}{
		"pattern": "*.go",
		"path":    dir,
	})
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 matches, got %d: %v", len(lines), lines)
	}
	for _, line := range lines {
		if !filepath.IsAbs(line) {
			t.Errorf("paths should be absolute, got %q", line)
		}
		if !strings.HasSuffix(line, ".go") {
			t.Errorf("unexpected match %q", line)
		}
	}
}

func TestGrepReportsPathLineAndText(t *testing.T) {
	dir := searchFixture(t)
	r := testRegistry(t)

	out, err := execute(t, r, "grep", map[string]interface{}{
		"pattern": `func \w+\(\)`,
		"path":    dir,
	})
	if err != nil {
		t.Fatalf("grep failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 matches, got %d: %v", len(lines), lines)
	}
	for _, line := range lines {
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			t.Fatalf("expected path:line: text format, got %q", line)
		}
		if parts[1] != "3" {
			t.Errorf("expected match on line 3, got %q", line)
		}
	}
}

func TestGrepGlobFilter(t *testing.T) {
	dir := searchFixture(t)
	r := testRegistry(t)

	out, err := execute(t, r, "grep", map[string]interface{}{
		"pattern": "func",
		"path":    dir,
		"glob":    "*.txt",
	})
	if err != nil {
		t.Fatalf("grep failed: %v", err)
	}
	if !strings.Contains(out, "notes.txt") {
		t.Errorf("expected a match in notes.txt, got %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Errorf("glob filter should exclude go files, got %q", out)
	}
}

func TestGrepBadPattern(t *testing.T) {
	r := testRegistry(t)
	if _, err := execute(t, r, "grep", map[string]interface{}{"pattern": "("}); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}
