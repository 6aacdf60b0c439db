package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedResponse is one canned reply for the scripted client.
type ScriptedResponse struct {
	Text string
	Err  error
}

// ScriptedClient returns canned responses in order: the deterministic test
// provider selected with provider "scripted". Safe for concurrent use; each
// call consumes one response regardless of which method made it.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	calls     []Request
	next      int
}

// NewScriptedClient creates a client that replays the given responses.
func NewScriptedClient(responses ...ScriptedResponse) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// Chat returns the next canned response.
func (s *ScriptedClient) Chat(_ context.Context, req Request) (*Response, error) {
	r, err := s.take(req)
	if err != nil {
		return nil, err
	}
	return &Response{
		Text:  r.Text,
		Usage: Usage{InputTokens: promptChars(req) / 4, OutputTokens: len(r.Text) / 4},
	}, nil
}

// Stream returns the next canned response as a single text chunk followed by
// a usage chunk.
func (s *ScriptedClient) Stream(_ context.Context, req Request) (<-chan Chunk, error) {
	r, err := s.take(req)
	if err != nil {
		return nil, err
	}
	out := make(chan Chunk, 2)
	if r.Text != "" {
		out <- Chunk{Text: r.Text}
	}
	out <- Chunk{Usage: &Usage{InputTokens: promptChars(req) / 4, OutputTokens: len(r.Text) / 4}}
	close(out)
	return out, nil
}

// Calls returns a copy of every request seen so far.
func (s *ScriptedClient) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.calls))
	copy(out, s.calls)
	return out
}

// Remaining reports how many canned responses are left.
func (s *ScriptedClient) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses) - s.next
}

func (s *ScriptedClient) take(req Request) (ScriptedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.next >= len(s.responses) {
		return ScriptedResponse{}, fmt.Errorf("scripted LLM client exhausted after %d calls", s.next)
	}
	r := s.responses[s.next]
	s.next++
	if r.Err != nil {
		return ScriptedResponse{}, r.Err
	}
	return r, nil
}

func promptChars(req Request) int {
	n := len(req.System)
	for _, m := range req.Messages {
		n += len(m.Content)
	}
	return n
}
