package llm

import (
	"strings"
)

// MessageRole represents the role of a message in a conversation.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
	RoleTool      MessageRole = "tool"
)

// RoleFromWire parses a wire-format role string. Unrecognized roles
// fall back to RoleUser.
func RoleFromWire(s string) MessageRole {
	switch MessageRole(s) {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return MessageRole(s)
	default:
		return RoleUser
	}
}

// StopReason is the provider-neutral reason a response terminated.
// Adapters normalize provider-specific finish reasons into this closed set.
type StopReason string

const (
	StopReasonNone          StopReason = ""
	StopReasonEndTurn       StopReason = "end_turn"
	StopReasonStopSequence  StopReason = "stop_sequence"
	StopReasonMaxTokens     StopReason = "max_tokens"
	StopReasonToolUse       StopReason = "tool_use"
	StopReasonContentFilter StopReason = "content_filter"
	StopReasonError         StopReason = "error"
)

// StopReasonFromWire normalizes a provider-specific stop reason string.
// Canonical strings map to themselves, so StopReasonFromWire(string(r)) == r
// for every canonical r. Unrecognized values map to StopReasonNone.
func StopReasonFromWire(s string) StopReason {
	switch strings.ToLower(s) {
	case "end_turn", "stop", "end", "done":
		return StopReasonEndTurn
	case "stop_sequence":
		return StopReasonStopSequence
	case "max_tokens", "length":
		return StopReasonMaxTokens
	case "tool_use", "tool_calls", "function_call":
		return StopReasonToolUse
	case "content_filter", "safety":
		return StopReasonContentFilter
	case "error":
		return StopReasonError
	default:
		return StopReasonNone
	}
}

// Message represents a single message in a conversation.
// This is provider-neutral and can represent user, assistant, system,
// or tool messages.
type Message struct {
	Role    MessageRole
	Content []ContentBlock
}

// ContentBlock represents a single content block within a message.
// It can be text, a tool use, or a tool result. Image blocks are
// reserved but not yet populated by any adapter.
type ContentBlock struct {
	Type       ContentBlockType
	Text       string           // For text blocks
	ToolUse    *ToolUseBlock    // For tool use blocks
	ToolResult *ToolResultBlock // For tool result blocks
}

// ContentBlockType represents the type of content block.
type ContentBlockType string

const (
	ContentBlockTypeText       ContentBlockType = "text"
	ContentBlockTypeToolUse    ContentBlockType = "tool_use"
	ContentBlockTypeToolResult ContentBlockType = "tool_result"
	ContentBlockTypeImage      ContentBlockType = "image" // reserved
)

// ToolUseBlock represents a tool invocation request from the assistant.
// ID is the provider-supplied opaque identifier used to correlate the
// later result.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input map[string]interface{} // JSON-serializable input parameters
}

// ToolResultBlock represents the result of a tool invocation.
type ToolResultBlock struct {
	ID      string // Correlating tool use ID
	Content string
	IsError bool
}

// ToolSpec represents a tool definition that can be provided to an LLM.
type ToolSpec struct {
	Name        string
	Description string
	Schema      ToolSchema
}

// ToolSchema represents the JSON schema for a tool's input parameters.
type ToolSchema struct {
	Type       string
	Properties map[string]interface{}
	Required   []string
}

// ParamType is the JSON-schema type tag of a tool parameter.
type ParamType string

const (
	ParamTypeString  ParamType = "string"
	ParamTypeNumber  ParamType = "number"
	ParamTypeBoolean ParamType = "boolean"
	ParamTypeObject  ParamType = "object"
	ParamTypeArray   ParamType = "array"
)

// ToolParam describes a single named parameter of a tool.
type ToolParam struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Enum        []string // Optional allowed string values
}

// NewToolSpec builds a ToolSpec from an ordered parameter list.
// Parameter names must be unique within a spec.
func NewToolSpec(name, description string, params ...ToolParam) ToolSpec {
	properties := make(map[string]interface{}, len(params))
	var required []string
	for _, p := range params {
		prop := map[string]interface{}{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return ToolSpec{
		Name:        name,
		Description: description,
		Schema: ToolSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}
}

// SchemaMap returns the schema as a plain JSON-schema fragment
// ({"type":"object","properties":{...},"required":[...]}).
func (s ToolSchema) SchemaMap() map[string]interface{} {
	properties := s.Properties
	if properties == nil {
		properties = map[string]interface{}{}
	}
	m := map[string]interface{}{
		"type":       s.Type,
		"properties": properties,
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return m
}

// Request represents a complete LLM API request.
type Request struct {
	Model       string
	Messages    []Message
	System      string
	Tools       []ToolSpec
	MaxTokens   int64
	Temperature *float64 // Optional temperature override
}

// Response represents a complete LLM API response.
type Response struct {
	ID         string // Provider-assigned response ID, if any
	Model      string
	Content    []ContentBlock
	Usage      *Usage
	StopReason StopReason
}

// ConcatenatedText joins the text blocks of the response, separated by
// newlines, with surrounding whitespace trimmed.
func (r *Response) ConcatenatedText() string {
	var parts []string
	for _, block := range r.Content {
		if block.Type == ContentBlockTypeText {
			parts = append(parts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// ToolUses returns the tool use blocks of the response in emission order.
func (r *Response) ToolUses() []*ToolUseBlock {
	var uses []*ToolUseBlock
	for _, block := range r.Content {
		if block.Type == ContentBlockTypeToolUse && block.ToolUse != nil {
			uses = append(uses, block.ToolUse)
		}
	}
	return uses
}

// HasToolUse reports whether the response contains any tool use blocks.
func (r *Response) HasToolUse() bool {
	return len(r.ToolUses()) > 0
}

// Usage represents token usage information from an LLM response.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// StreamDelta represents a single delta in a streaming response.
type StreamDelta struct {
	Type      StreamDeltaType
	Text      string        // For text deltas
	ToolUse   *ToolUseBlock // For tool use start
	ToolInput string        // For tool input JSON deltas
}

// StreamDeltaType represents the type of streaming delta.
type StreamDeltaType string

const (
	StreamDeltaTypeText      StreamDeltaType = "text"
	StreamDeltaTypeToolUse   StreamDeltaType = "tool_use"
	StreamDeltaTypeToolInput StreamDeltaType = "tool_input"
)

// StreamEvent represents a complete streaming event.
// A well-formed stream emits exactly one start event before any delta
// and exactly one stop event, after which no further events fire.
type StreamEvent struct {
	Type       StreamEventType
	Delta      *StreamDelta
	Usage      *Usage
	StopReason StopReason
	Done       bool
}

// StreamEventType represents the type of streaming event.
type StreamEventType string

const (
	StreamEventTypeStart        StreamEventType = "start"
	StreamEventTypeContentBlock StreamEventType = "content_block"
	StreamEventTypeContentDelta StreamEventType = "content_delta"
	StreamEventTypeMessageDelta StreamEventType = "message_delta"
	StreamEventTypeStop         StreamEventType = "stop"
)

// NewTextMessage creates a new message with a single text content block.
func NewTextMessage(role MessageRole, text string) Message {
	return Message{
		Role: role,
		Content: []ContentBlock{
			{
				Type: ContentBlockTypeText,
				Text: text,
			},
		},
	}
}

// NewToolUseMessage creates a new assistant message with tool use blocks.
func NewToolUseMessage(toolUses []ToolUseBlock) Message {
	content := make([]ContentBlock, len(toolUses))
	for i, tu := range toolUses {
		content[i] = ContentBlock{
			Type:    ContentBlockTypeToolUse,
			ToolUse: &tu,
		}
	}
	return Message{
		Role:    RoleAssistant,
		Content: content,
	}
}

// NewToolResultMessage creates a new user message with tool result blocks.
func NewToolResultMessage(toolResults []ToolResultBlock) Message {
	content := make([]ContentBlock, len(toolResults))
	for i, tr := range toolResults {
		content[i] = ContentBlock{
			Type:       ContentBlockTypeToolResult,
			ToolResult: &tr,
		}
	}
	return Message{
		Role:    RoleUser,
		Content: content,
	}
}
