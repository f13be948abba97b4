package llm

// replayStream replays a fixed event slice. It backs SingleShotStream
// and test doubles.
type replayStream struct {
	events  []*StreamEvent
	current int
	err     error
}

// NewReplayStream returns a Stream that yields the given events in order.
func NewReplayStream(events []*StreamEvent) Stream {
	return &replayStream{events: events, current: -1}
}

// SingleShotStream converts a complete response into a well-formed
// stream: one start event, one text delta per text block, one
// content_block event per tool use, then a terminal stop carrying the
// response's usage and stop reason. Adapters without a distinct
// streaming transport use this as their fallback.
func SingleShotStream(resp *Response) Stream {
	events := []*StreamEvent{{Type: StreamEventTypeStart}}
	for _, block := range resp.Content {
		switch block.Type {
		case ContentBlockTypeText:
			events = append(events, &StreamEvent{
				Type:  StreamEventTypeContentDelta,
				Delta: &StreamDelta{Type: StreamDeltaTypeText, Text: block.Text},
			})
		case ContentBlockTypeToolUse:
			events = append(events, &StreamEvent{
				Type:  StreamEventTypeContentBlock,
				Delta: &StreamDelta{Type: StreamDeltaTypeToolUse, ToolUse: block.ToolUse},
			})
		}
	}
	events = append(events, &StreamEvent{
		Type:       StreamEventTypeStop,
		Usage:      resp.Usage,
		StopReason: resp.StopReason,
		Done:       true,
	})
	return NewReplayStream(events)
}

// Next advances to the next event.
func (s *replayStream) Next() bool {
	if s.current+1 >= len(s.events) {
		return false
	}
	s.current++
	return true
}

// Event returns the current event.
func (s *replayStream) Event() *StreamEvent {
	if s.current < 0 || s.current >= len(s.events) {
		return nil
	}
	return s.events[s.current]
}

// Err returns any stream error.
func (s *replayStream) Err() error { return s.err }

// Close implements Stream.Close.
func (s *replayStream) Close() error { return nil }

var _ Stream = (*replayStream)(nil)
