// Package tools implements the built-in tool executor: a name-indexed
// registry of handlers plus default handlers for shell, filesystem,
// search, and web access. The registry satisfies the agent package's
// ToolExecutor interface.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// Handler executes one tool invocation. args is the raw JSON encoding
// of the tool-use input.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Registry maps tool names to handlers and their descriptors. It is
// read-only after construction.
type Registry struct {
	handlers map[string]Handler
	specs    []llm.ToolSpec
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger.With().Str("component", "toolRegistry").Logger(),
	}
}

// NewDefaultRegistry creates a registry with every built-in tool
// registered. searchProvider may be nil, in which case web_search is
// not offered.
func NewDefaultRegistry(logger zerolog.Logger, searchProvider SearchProvider) *Registry {
	r := NewRegistry(logger)
	r.RegisterSystemTools()
	r.RegisterFilesystemTools()
	r.RegisterSearchTools()
	r.RegisterWebTools(searchProvider)
	return r
}

// Register binds a handler to a descriptor. A duplicate name replaces
// the handler but keeps a single descriptor entry.
func (r *Registry) Register(spec llm.ToolSpec, h Handler) {
	r.logger.Debug().Str("tool", spec.Name).Msg("registering tool handler")
	if _, exists := r.handlers[spec.Name]; !exists {
		r.specs = append(r.specs, spec)
	}
	r.handlers[spec.Name] = h
}

// registerHidden binds a handler without advertising a descriptor.
// Used for tools that are callable but not offered to the model.
func (r *Registry) registerHidden(name string, h Handler) {
	r.handlers[name] = h
}

// Specs returns the descriptors of every registered tool, in
// registration order.
func (r *Registry) Specs() []llm.ToolSpec {
	out := make([]llm.ToolSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Execute dispatches a tool use to its handler.
func (r *Registry) Execute(ctx context.Context, toolUse *llm.ToolUseBlock) (string, error) {
	if toolUse == nil {
		return "", llm.NewError(llm.KindTool, "tools: tool use is required", nil)
	}

	h, ok := r.handlers[toolUse.Name]
	if !ok {
		r.logger.Warn().Str("tool", toolUse.Name).Msg("unknown tool requested")
		return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: unknown tool %q", toolUse.Name), nil)
	}

	args, err := json.Marshal(toolUse.Input)
	if err != nil {
		return "", llm.NewError(llm.KindSerialization, fmt.Sprintf("tools: encoding input for %q: %v", toolUse.Name, err), err)
	}

	r.logger.Debug().Str("tool", toolUse.Name).Str("toolID", toolUse.ID).Msg("executing tool")
	return h(ctx, args)
}

// decodeArgs unmarshals handler arguments, reporting schema mismatches
// as tool errors.
func decodeArgs(name string, args json.RawMessage, into interface{}) error {
	if err := json.Unmarshal(args, into); err != nil {
		return llm.NewError(llm.KindTool, fmt.Sprintf("tools: decoding %s arguments: %v", name, err), err)
	}
	return nil
}
