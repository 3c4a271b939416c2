package synthetic

import (
	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

// chunkStream yields a fixed text as content_block_delta events of at most size
// characters each. It is single-pass.
type chunkStream struct {
	text   []rune
	size   int
	pos    int
	cur    llm.StreamEvent
	closed bool
}

func newChunkStream(text string, size int) *chunkStream {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &chunkStream{text: []rune(text), size: size}
}

func (s *chunkStream) Next() bool {
	if s.closed || s.pos >= len(s.text) {
		s.cur = llm.StreamEvent{}
		return false
	}
	end := s.pos + s.size
	if end > len(s.text) {
		end = len(s.text)
	}
	s.cur = llm.NewTextDeltaEvent(0, string(s.text[s.pos:end]))
	s.pos = end
	return true
}

func (s *chunkStream) Current() llm.StreamEvent {
	return s.cur
}

func (s *chunkStream) Err() error {
	return nil
}

func (s *chunkStream) Close() error {
	s.closed = true
	return nil
}

// resultsStream lazily yields count succeeded batch results, building each
// message only when the caller advances
type resultsStream struct {
	gen       *Generator
	req       Request
	remaining int
	cur       llm.BatchIndividualResponse
}

func newResultsStream(gen *Generator, req Request, count int) *resultsStream {
	return &resultsStream{gen: gen, req: req, remaining: count}
}

func (s *resultsStream) Next() bool {
	if s.remaining <= 0 {
		s.cur = llm.BatchIndividualResponse{}
		return false
	}
	s.remaining--
	s.cur = llm.BatchIndividualResponse{
		CustomID: s.gen.NewID(PrefixCustom),
		Result: llm.BatchResult{
			Type:    llm.BatchResultSucceeded,
			Message: s.gen.Message(s.req),
		},
	}
	return true
}

func (s *resultsStream) Current() llm.BatchIndividualResponse {
	return s.cur
}

func (s *resultsStream) Err() error {
	return nil
}

func (s *resultsStream) Close() error {
	s.remaining = 0
	return nil
}

var (
	_ llm.MessageStream     = (*chunkStream)(nil)
	_ llm.BatchResultStream = (*resultsStream)(nil)
)
