package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/promptwire/promptwire/llm"

	"github.com/promptwire/promptwire/tools/schemas"
)

// maxGrepLineSize bounds a single scanned line.
const maxGrepLineSize = 1 << 20

// RegisterSearchTools registers glob and grep.
func (r *Registry) RegisterSearchTools() {
	searchSpecs := schemas.Search()
	byName := make(map[string]llm.ToolSpec, len(searchSpecs))
	for _, spec := range searchSpecs {
		byName[spec.Name] = spec
	}

	r.Register(byName["glob"], globHandler)
	r.Register(byName["grep"], grepHandler)
}

func globHandler(ctx context.Context, args json.RawMessage) (string, error) {
	var payload struct {
		Pattern string `json:"pattern"`
		Path    string `json:"path"`
	}
	if err := decodeArgs("glob", args, &payload); err != nil {
		return "", err
	}
	if payload.Pattern == "" {
		return "", llm.NewError(llm.KindTool, "tools: glob requires a pattern", nil)
	}
	if payload.Path == "" {
		payload.Path = "."
	}
	if _, err := filepath.Match(payload.Pattern, ""); err != nil {
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: glob: bad pattern %q: %v", payload.Pattern, err), err)
	}

	var b strings.Builder
	// Per-file walk errors are skipped; the walk continues.
	_ = filepath.WalkDir(payload.Path, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil || d.IsDir() {
			return nil
		}
		matched, _ := filepath.Match(payload.Pattern, d.Name())
		if !matched {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		b.WriteString(abs)
		b.WriteString("\n")
		return nil
	})
	if ctxErr := llm.FromContext(ctx); ctxErr != nil {
		return "", ctxErr
	}
	return b.String(), nil
}

func grepHandler(ctx context.Context, args json.RawMessage) (string, error) {
	var payload struct {
		Pattern string `json:"pattern"`
		Path    string `json:"path"`
		Glob    string `json:"glob"`
	}
	if err := decodeArgs("grep", args, &payload); err != nil {
		return "", err
	}
	if payload.Pattern == "" {
		return "", llm.NewError(llm.KindTool, "tools: grep requires a pattern", nil)
	}
	if payload.Path == "" {
		payload.Path = "."
	}

	re, err := regexp.Compile(payload.Pattern)
	if err != nil {
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: grep: bad pattern %q: %v", payload.Pattern, err), err)
	}

	var b strings.Builder
	// Per-file errors are skipped; the walk continues.
	_ = filepath.WalkDir(payload.Path, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil || d.IsDir() {
			return nil
		}
		if payload.Glob != "" {
			matched, _ := filepath.Match(payload.Glob, d.Name())
			if !matched {
				return nil
			}
		}
		grepFile(&b, re, path)
		return nil
	})
	if ctxErr := llm.FromContext(ctx); ctxErr != nil {
		return "", ctxErr
	}
	return b.String(), nil
}

func grepFile(b *strings.Builder, re *regexp.Regexp, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxGrepLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if re.MatchString(line) {
			fmt.Fprintf(b, "%s:%d: %s\n", path, lineNo, line)
		}
	}
}
