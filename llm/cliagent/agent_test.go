package cliagent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/promptwire/promptwire/llm"
)

func fakeBinary(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("writing fake binary: %v", err)
	}
	return path
}

func TestResolveExecutableConfiguredPath(t *testing.T) {
	bin := fakeBinary(t, "agent")

	path, err := ResolveExecutable(bin, "AGENT_TEST_PATH", "agent")
	if err != nil {
		t.Fatalf("ResolveExecutable: %v", err)
	}
	if path != bin {
		t.Errorf("path = %q, want %q", path, bin)
	}
}

func TestResolveExecutableConfiguredPathMissing(t *testing.T) {
	_, err := ResolveExecutable(filepath.Join(t.TempDir(), "missing"), "AGENT_TEST_PATH", "agent")
	if !llm.IsKind(err, llm.KindCLINotFound) {
		t.Fatalf("expected cli not found error, got %v", err)
	}
}

func TestResolveExecutableEnvOverride(t *testing.T) {
	bin := fakeBinary(t, "agent")
	t.Setenv("AGENT_TEST_PATH", bin)

	path, err := ResolveExecutable("", "AGENT_TEST_PATH", "definitely-not-on-path-xyz")
	if err != nil {
		t.Fatalf("ResolveExecutable: %v", err)
	}
	if path != bin {
		t.Errorf("path = %q, want %q", path, bin)
	}
}

func TestResolveExecutableEnvOverrideMissing(t *testing.T) {
	t.Setenv("AGENT_TEST_PATH", filepath.Join(t.TempDir(), "missing"))

	_, err := ResolveExecutable("", "AGENT_TEST_PATH", "agent")
	if !llm.IsKind(err, llm.KindCLINotFound) {
		t.Fatalf("expected cli not found error, got %v", err)
	}
}

func TestResolveExecutableNotInPath(t *testing.T) {
	_, err := ResolveExecutable("", "AGENT_TEST_PATH_UNSET", "definitely-not-on-path-xyz")
	if !llm.IsKind(err, llm.KindCLINotFound) {
		t.Fatalf("expected cli not found error, got %v", err)
	}
}

func TestRenderPromptWithSession(t *testing.T) {
	msgs := []llm.Message{
		llm.NewTextMessage(llm.RoleUser, "first question"),
		llm.NewTextMessage(llm.RoleAssistant, "first answer"),
		llm.NewTextMessage(llm.RoleUser, "second question"),
	}

	if got := RenderPrompt(msgs, true); got != "second question" {
		t.Errorf("persisted prompt = %q", got)
	}
}

func TestRenderPromptReplaysConversation(t *testing.T) {
	msgs := []llm.Message{
		llm.NewTextMessage(llm.RoleUser, "first question"),
		llm.NewTextMessage(llm.RoleAssistant, "first answer"),
		llm.NewTextMessage(llm.RoleUser, "second question"),
	}

	want := "User: first question\n\nAssistant: first answer\n\nUser: second question"
	if got := RenderPrompt(msgs, false); got != want {
		t.Errorf("replayed prompt = %q, want %q", got, want)
	}
}

func TestRenderPromptSkipsNonTextBlocks(t *testing.T) {
	msgs := []llm.Message{
		{
			Role: llm.RoleAssistant,
			Content: []llm.ContentBlock{{
				Type:    llm.ContentBlockTypeToolUse,
				ToolUse: &llm.ToolUseBlock{ID: "t1", Name: "bash"},
			}},
		},
		llm.NewTextMessage(llm.RoleUser, "hello"),
	}

	if got := RenderPrompt(msgs, false); got != "User: hello" {
		t.Errorf("prompt = %q", got)
	}
}
