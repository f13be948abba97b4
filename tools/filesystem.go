package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/promptwire/promptwire/llm"

	"github.com/promptwire/promptwire/tools/schemas"
)

// RegisterFilesystemTools registers read, write, edit, and ls.
func (r *Registry) RegisterFilesystemTools() {
	fsSpecs := schemas.Filesystem()
	byName := make(map[string]llm.ToolSpec, len(fsSpecs))
	for _, spec := range fsSpecs {
		byName[spec.Name] = spec
	}

	r.Register(byName["read"], readHandler)
	r.Register(byName["write"], writeHandler)
	r.Register(byName["edit"], editHandler)
	r.Register(byName["ls"], lsHandler)
}

func readHandler(ctx context.Context, args json.RawMessage) (string, error) {
	var payload struct {
		Path   string `json:"path"`
		Offset int64  `json:"offset"`
		Limit  int64  `json:"limit"`
	}
	if err := decodeArgs("read", args, &payload); err != nil {
		return "", err
	}
	if payload.Path == "" {
		return "", llm.NewError(llm.KindTool, "tools: read requires a path", nil)
	}

	data, err := os.ReadFile(payload.Path)
	if err != nil {
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: read: %v", err), err)
	}

	if payload.Offset >= int64(len(data)) {
		return "", nil
	}
	if payload.Offset > 0 {
		data = data[payload.Offset:]
	}
	if payload.Limit > 0 && payload.Limit < int64(len(data)) {
		data = data[:payload.Limit]
	}
	return string(data), nil
}

func writeHandler(ctx context.Context, args json.RawMessage) (string, error) {
	var payload struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := decodeArgs("write", args, &payload); err != nil {
		return "", err
	}
	if payload.Path == "" {
		return "", llm.NewError(llm.KindTool, "tools: write requires a path", nil)
	}

	if err := os.WriteFile(payload.Path, []byte(payload.Content), 0o644); err != nil {
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: write: %v", err), err)
	}
	return "OK", nil
}

func editHandler(ctx context.Context, args json.RawMessage) (string, error) {
	var payload struct {
		Path      string `json:"path"`
		OldString string `json:"old_string"`
		NewString string `json:"new_string"`
	}
	if err := decodeArgs("edit", args, &payload); err != nil {
		return "", err
	}
	if payload.Path == "" || payload.OldString == "" {
		return "", llm.NewError(llm.KindTool, "tools: edit requires path and old_string", nil)
	}

	data, err := os.ReadFile(payload.Path)
	if err != nil {
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: edit: %v", err), err)
	}
	text := string(data)
	if !strings.Contains(text, payload.OldString) {
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: edit: old_string not found in %s", payload.Path), nil)
	}

	text = strings.Replace(text, payload.OldString, payload.NewString, 1)
	if err := os.WriteFile(payload.Path, []byte(text), 0o644); err != nil {
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: edit: %v", err), err)
	}
	return "OK", nil
}

func lsHandler(ctx context.Context, args json.RawMessage) (string, error) {
	var payload struct {
		Path string `json:"path"`
	}
	if err := decodeArgs("ls", args, &payload); err != nil {
		return "", err
	}
	if payload.Path == "" {
		payload.Path = "."
	}

	entries, err := os.ReadDir(payload.Path)
	if err != nil {
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: ls: %v", err), err)
	}

	var b strings.Builder
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// Entries that vanish mid-listing are skipped.
			continue
		}
		kind := "-"
		if entry.IsDir() {
			kind = "d"
		}
		fmt.Fprintf(&b, "%s %8d %s\n", kind, info.Size(), entry.Name())
	}
	return b.String(), nil
}
