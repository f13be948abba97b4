package llm

import (
	"encoding/json"
	"fmt"
)

// The canonical wire shapes are the Anthropic-style block objects:
//
//	{"type":"text","text":...}
//	{"type":"tool_use","id":...,"name":...,"input":{...}}
//	{"type":"tool_result","tool_use_id":...,"content":...,"is_error":...}
//
// Message content with exactly one text block may be emitted as a bare
// string; deserialization accepts either form.

type textBlockJSON struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolUseBlockJSON struct {
	Type  string                 `json:"type"`
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

type toolResultBlockJSON struct {
	Type      string `json:"type"`
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

// MarshalJSON serializes a content block into its canonical wire shape.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case ContentBlockTypeText:
		return json.Marshal(textBlockJSON{Type: string(ContentBlockTypeText), Text: b.Text})
	case ContentBlockTypeToolUse:
		if b.ToolUse == nil {
			return nil, &Error{Kind: KindSerialization, Message: "tool_use block has no payload"}
		}
		input := b.ToolUse.Input
		if input == nil {
			input = map[string]interface{}{}
		}
		return json.Marshal(toolUseBlockJSON{
			Type:  string(ContentBlockTypeToolUse),
			ID:    b.ToolUse.ID,
			Name:  b.ToolUse.Name,
			Input: input,
		})
	case ContentBlockTypeToolResult:
		if b.ToolResult == nil {
			return nil, &Error{Kind: KindSerialization, Message: "tool_result block has no payload"}
		}
		return json.Marshal(toolResultBlockJSON{
			Type:      string(ContentBlockTypeToolResult),
			ToolUseID: b.ToolResult.ID,
			Content:   b.ToolResult.Content,
			IsError:   b.ToolResult.IsError,
		})
	default:
		return nil, &Error{Kind: KindSerialization, Message: fmt.Sprintf("cannot serialize content block type %q", b.Type)}
	}
}

// UnmarshalJSON parses a canonical block object. Blocks with an unknown
// type discriminator keep the raw type tag and empty payload; message
// parsing drops them.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Type      string                 `json:"type"`
		Text      string                 `json:"text"`
		ID        string                 `json:"id"`
		Name      string                 `json:"name"`
		Input     map[string]interface{} `json:"input"`
		ToolUseID string                 `json:"tool_use_id"`
		Content   string                 `json:"content"`
		IsError   bool                   `json:"is_error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return &Error{Kind: KindSerialization, Message: "malformed content block", ProviderErr: err}
	}

	switch ContentBlockType(envelope.Type) {
	case ContentBlockTypeText:
		*b = ContentBlock{Type: ContentBlockTypeText, Text: envelope.Text}
	case ContentBlockTypeToolUse:
		input := envelope.Input
		if input == nil {
			input = map[string]interface{}{}
		}
		*b = ContentBlock{
			Type: ContentBlockTypeToolUse,
			ToolUse: &ToolUseBlock{
				ID:    envelope.ID,
				Name:  envelope.Name,
				Input: input,
			},
		}
	case ContentBlockTypeToolResult:
		*b = ContentBlock{
			Type: ContentBlockTypeToolResult,
			ToolResult: &ToolResultBlock{
				ID:      envelope.ToolUseID,
				Content: envelope.Content,
				IsError: envelope.IsError,
			},
		}
	default:
		*b = ContentBlock{Type: ContentBlockType(envelope.Type)}
	}
	return nil
}

// isKnownBlockType reports whether the block carries a payload this
// package understands.
func isKnownBlockType(t ContentBlockType) bool {
	switch t {
	case ContentBlockTypeText, ContentBlockTypeToolUse, ContentBlockTypeToolResult:
		return true
	default:
		return false
	}
}

type messageJSON struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON serializes a message as {"role":..., "content":...}.
// A message whose content is exactly one text block uses the string
// shorthand for content.
func (m Message) MarshalJSON() ([]byte, error) {
	var content []byte
	var err error
	if len(m.Content) == 1 && m.Content[0].Type == ContentBlockTypeText {
		content, err = json.Marshal(m.Content[0].Text)
	} else {
		content, err = json.Marshal(m.Content)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(messageJSON{Role: string(m.Role), Content: content})
}

// UnmarshalJSON parses a message, accepting both the string shorthand
// and the block-array form for content. Unknown block types are dropped.
func (m *Message) UnmarshalJSON(data []byte) error {
	var envelope messageJSON
	if err := json.Unmarshal(data, &envelope); err != nil {
		return &Error{Kind: KindSerialization, Message: "malformed message", ProviderErr: err}
	}

	m.Role = RoleFromWire(envelope.Role)
	m.Content = nil
	if len(envelope.Content) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(envelope.Content, &text); err == nil {
		m.Content = []ContentBlock{{Type: ContentBlockTypeText, Text: text}}
		return nil
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(envelope.Content, &blocks); err != nil {
		return &Error{Kind: KindSerialization, Message: "malformed message content", ProviderErr: err}
	}
	for _, block := range blocks {
		if isKnownBlockType(block.Type) {
			m.Content = append(m.Content, block)
		}
	}
	return nil
}

// ToJSON marshals a message to JSON for debugging/logging purposes.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
