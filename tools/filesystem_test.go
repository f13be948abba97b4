package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/promptwire/promptwire/llm"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := testRegistry(t)

	out, err := execute(t, r, "read", map[string]interface{}{"path": path})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out != "hello world" {
		t.Errorf("unexpected content: %q", out)
	}
}

func TestReadFileOffsetAndLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := testRegistry(t)

	out, err := execute(t, r, "read", map[string]interface{}{
		"path":   path,
		"offset": float64(2),
		"limit":  float64(3),
	})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out != "234" {
		t.Errorf("expected '234', got %q", out)
	}

	// Offset beyond the end yields an empty string, not an error.
	out, err = execute(t, r, "read", map[string]interface{}{
		"path":   path,
		"offset": float64(100),
	})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty string for out-of-range offset, got %q", out)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	r := testRegistry(t)

	out, err := execute(t, r, "write", map[string]interface{}{
		"path":    path,
		"content": "written",
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if out != "OK" {
		t.Errorf("expected 'OK', got %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "written" {
		t.Errorf("file content mismatch: %q", data)
	}
}

func TestWriteFileDefaultsToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	r := testRegistry(t)

	if _, err := execute(t, r, "write", map[string]interface{}{"path": path}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty file, got %q", data)
	}
}

func TestEditReplacesFirstOccurrence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edit.txt")
	if err := os.WriteFile(path, []byte("foo bar foo"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := testRegistry(t)

	out, err := execute(t, r, "edit", map[string]interface{}{
		"path":       path,
		"old_string": "foo",
		"new_string": "baz",
	})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if out != "OK" {
		t.Errorf("expected 'OK', got %q", out)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "baz bar foo" {
		t.Errorf("only the first occurrence should be replaced, got %q", data)
	}
}

func TestEditMissingOldString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edit.txt")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := testRegistry(t)

	_, err := execute(t, r, "edit", map[string]interface{}{
		"path":       path,
		"old_string": "absent",
		"new_string": "x",
	})
	if !llm.IsKind(err, llm.KindTool) {
		t.Fatalf("expected tool error for missing old_string, got %v", err)
	}
}

func TestLsListsTypeAndSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := testRegistry(t)

	out, err := execute(t, r, "ls", map[string]interface{}{"path": dir})
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}

	var fileLine, dirLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(line, "file.txt") {
			fileLine = line
		}
		if strings.HasSuffix(line, "sub") {
			dirLine = line
		}
	}
	if !strings.HasPrefix(fileLine, "-") || !strings.Contains(fileLine, "5") {
		t.Errorf("unexpected file entry: %q", fileLine)
	}
	if !strings.HasPrefix(dirLine, "d") {
		t.Errorf("unexpected dir entry: %q", dirLine)
	}
}
