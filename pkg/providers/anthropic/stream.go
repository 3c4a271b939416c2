package anthropic

import (
	"encoding/json"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

// iterator is the pull interface shared by the SDK's SSE and JSONL streams
type iterator[U any] interface {
	Next() bool
	Current() U
	Err() error
	Close() error
}

// stream converts each item of an SDK stream into one of our types
type stream[T any, U rawJSON] struct {
	it  iterator[U]
	cur T
	err error
}

func newStream[T any, U rawJSON](it iterator[U]) *stream[T, U] {
	return &stream[T, U]{it: it}
}

func (s *stream[T, U]) Next() bool {
	var zero T
	s.cur = zero
	if s.err != nil || !s.it.Next() {
		return false
	}
	if err := json.Unmarshal([]byte(s.it.Current().RawJSON()), &s.cur); err != nil {
		s.err = &llm.Error{
			Code:    "decode_error",
			Message: "failed to decode stream item: " + err.Error(),
			Type:    llm.ErrorTypeAPI,
			Err:     err,
		}
		return false
	}
	return true
}

func (s *stream[T, U]) Current() T {
	return s.cur
}

func (s *stream[T, U]) Err() error {
	if s.err != nil {
		return s.err
	}
	return convertError(s.it.Err())
}

func (s *stream[T, U]) Close() error {
	return s.it.Close()
}
