package tools

import (
	"strings"
	"testing"
)

func TestBashCapturesOutput(t *testing.T) {
	r := testRegistry(t)

	out, err := execute(t, r, "bash", map[string]interface{}{"command": "echo hello"})
	if err != nil {
		t.Fatalf("bash failed: %v", err)
	}
	if out != "hello\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestBashMergesStderr(t *testing.T) {
	r := testRegistry(t)

	out, err := execute(t, r, "bash", map[string]interface{}{"command": "echo oops 1>&2"})
	if err != nil {
		t.Fatalf("bash failed: %v", err)
	}
	if !strings.Contains(out, "oops") {
		t.Errorf("stderr should be merged into output, got %q", out)
	}
}

func TestBashNonZeroExitIsResult(t *testing.T) {
	r := testRegistry(t)

	out, err := execute(t, r, "bash", map[string]interface{}{"command": "echo failing; exit 3"})
	if err != nil {
		t.Fatalf("non-zero exit should not be an error: %v", err)
	}
	if !strings.HasPrefix(out, "[exit code 3]\n") {
		t.Errorf("output should carry the exit code prefix, got %q", out)
	}
	if !strings.Contains(out, "failing") {
		t.Errorf("output should carry the command output, got %q", out)
	}
}
