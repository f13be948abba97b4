package cliagent

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"sync"

	"github.com/promptwire/promptwire/llm"
)

// maxLineSize bounds one NDJSON line from the agent.
const maxLineSize = 4 << 20

// stream implements llm.Stream over an agent process's NDJSON output.
// The child runs to completion on first Next; events replay from the
// buffer.
type stream struct {
	ctx     context.Context
	client  *Client
	cmd     *exec.Cmd
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	err     error
	started bool
}

func newStream(ctx context.Context, client *Client, cmd *exec.Cmd) *stream {
	return &stream{
		ctx:     ctx,
		client:  client,
		cmd:     cmd,
		current: -1,
	}
}

// Next advances to the next event in the stream.
func (s *stream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		s.drain()
	}

	s.current++
	return s.current < len(s.events)
}

// Event returns the current event.
func (s *stream) Event() *llm.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.events) {
		return nil
	}
	return s.events[s.current]
}

// Err returns any error that terminated the stream.
func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close kills the child process if it is still running.
func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd.Process != nil && s.cmd.ProcessState == nil {
		return s.cmd.Process.Kill()
	}
	return nil
}

func (s *stream) drain() {
	agent := s.client.agent
	logger := s.client.logger

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		s.err = llm.NewError(llm.KindCLIExecution, agent.Name()+": opening stdout pipe: "+err.Error(), err)
		return
	}
	var stderr bytes.Buffer
	s.cmd.Stderr = &stderr

	if err := s.cmd.Start(); err != nil {
		s.err = s.client.execError(s.ctx, err, stderr.String())
		return
	}

	s.events = append(s.events, &llm.StreamEvent{Type: llm.StreamEventTypeStart})

	var acc Accumulator
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if acc.Done {
			// The terminal event has been seen; later lines are noise.
			continue
		}

		events, err := agent.ParseStreamLine(line, &acc)
		if err != nil {
			// A malformed line terminates the event sequence with an
			// error stop reason rather than escaping the loop.
			logger.Warn().Err(err).Msg("stream terminated by malformed line")
			s.events = append(s.events, &llm.StreamEvent{
				Type:       llm.StreamEventTypeStop,
				Usage:      acc.Usage,
				StopReason: llm.StopReasonError,
				Done:       true,
			})
			s.finish(&acc)
			return
		}
		s.events = append(s.events, events...)
	}

	if err := scanner.Err(); err != nil {
		if ctxErr := llm.FromContext(s.ctx); ctxErr != nil {
			s.err = ctxErr
			s.finish(&acc)
			return
		}
		logger.Warn().Err(err).Msg("stream terminated by read error")
		s.events = append(s.events, &llm.StreamEvent{
			Type:       llm.StreamEventTypeStop,
			Usage:      acc.Usage,
			StopReason: llm.StopReasonError,
			Done:       true,
		})
		s.finish(&acc)
		return
	}

	if waitErr := s.cmd.Wait(); waitErr != nil {
		if ctxErr := llm.FromContext(s.ctx); ctxErr != nil {
			s.err = ctxErr
			return
		}
		s.err = s.client.execError(s.ctx, waitErr, stderr.String())
		return
	}

	s.client.recordSession(acc.SessionID)

	if !acc.Done {
		s.events = append(s.events, &llm.StreamEvent{
			Type:       llm.StreamEventTypeStop,
			Usage:      acc.Usage,
			StopReason: llm.StopReasonEndTurn,
			Done:       true,
		})
	}
}

// finish reaps the child after an aborted read.
func (s *stream) finish(acc *Accumulator) {
	_ = s.cmd.Process.Kill()
	_ = s.cmd.Wait()
	s.client.recordSession(acc.SessionID)
}
