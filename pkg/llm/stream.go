// Pull iterators returned by streaming operations
package llm

// Stream is a single-pass pull iterator. Callers loop on Next, read Current and
// check Err once Next returns false. A stream cannot be restarted.
type Stream[T any] interface {
	Next() bool
	Current() T
	Err() error
	Close() error
}

// MessageStream yields the events of a streamed message
type MessageStream = Stream[StreamEvent]

// BatchResultStream yields the individual results of a batch
type BatchResultStream = Stream[BatchIndividualResponse]

// Stream event types
const (
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
	EventPing              = "ping"
	EventError             = "error"

	DeltaTypeText = "text_delta"
)

// StreamEvent represents a single event in the streaming response
type StreamEvent struct {
	Type    string       `json:"type"`
	Index   int          `json:"index"`
	Message *Message     `json:"message,omitempty"`
	Delta   *StreamDelta `json:"delta,omitempty"`
	Usage   *Usage       `json:"usage,omitempty"`
	Error   *Error       `json:"error,omitempty"`
}

// StreamDelta represents an incremental update
type StreamDelta struct {
	Type       string     `json:"type,omitempty"`
	Text       string     `json:"text,omitempty"`
	StopReason StopReason `json:"stop_reason,omitempty"`
}

// NewTextDeltaEvent creates a content_block_delta event carrying text
func NewTextDeltaEvent(index int, text string) StreamEvent {
	return StreamEvent{
		Type:  EventContentBlockDelta,
		Index: index,
		Delta: &StreamDelta{Type: DeltaTypeText, Text: text},
	}
}

// IsTextDelta returns true if the event carries a text delta
func (e StreamEvent) IsTextDelta() bool {
	return e.Type == EventContentBlockDelta && e.Delta != nil && e.Delta.Type == DeltaTypeText
}

// IsError returns true if this is an error event
func (e StreamEvent) IsError() bool {
	return e.Type == EventError && e.Error != nil
}

// SliceStream iterates over a fixed slice of items
type SliceStream[T any] struct {
	items []T
	pos   int
	cur   T
}

// NewSliceStream creates a stream over items
func NewSliceStream[T any](items []T) *SliceStream[T] {
	return &SliceStream[T]{items: items}
}

// Next advances the stream
func (s *SliceStream[T]) Next() bool {
	if s.pos >= len(s.items) {
		var zero T
		s.cur = zero
		return false
	}
	s.cur = s.items[s.pos]
	s.pos++
	return true
}

// Current returns the item the last call to Next moved to
func (s *SliceStream[T]) Current() T {
	return s.cur
}

// Err always returns nil
func (s *SliceStream[T]) Err() error {
	return nil
}

// Close exhausts the stream
func (s *SliceStream[T]) Close() error {
	s.pos = len(s.items)
	return nil
}

// CollectText drains a message stream and concatenates every text delta
func CollectText(stream MessageStream) (string, error) {
	var text []byte
	for stream.Next() {
		event := stream.Current()
		if event.IsError() {
			return string(text), event.Error
		}
		if event.IsTextDelta() {
			text = append(text, event.Delta.Text...)
		}
	}
	return string(text), stream.Err()
}
