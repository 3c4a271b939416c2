package bedrock

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/mudler/xlog"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

// eventReader is the subset of the bedrockruntime event stream the adapter reads
type eventReader interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

// eventStream turns Bedrock response chunks into message stream events. Each
// chunk of a Claude model carries one Anthropic stream event as JSON.
type eventStream struct {
	reader eventReader
	cur    llm.StreamEvent
	err    error
}

func newEventStream(reader eventReader) *eventStream {
	return &eventStream{reader: reader}
}

func (s *eventStream) Next() bool {
	s.cur = llm.StreamEvent{}
	if s.err != nil {
		return false
	}

	for event := range s.reader.Events() {
		switch v := event.(type) {
		case *types.ResponseStreamMemberChunk:
			ev, err := decodeChunk(v.Value.Bytes)
			if err != nil {
				s.err = err
				return false
			}
			if ev.Type == llm.EventPing {
				continue
			}
			s.cur = ev
			return true
		default:
			xlog.Debug("Skipping unknown Bedrock stream member", "type", fmt.Sprintf("%T", event))
		}
	}
	return false
}

func (s *eventStream) Current() llm.StreamEvent {
	return s.cur
}

func (s *eventStream) Err() error {
	if s.err != nil {
		return s.err
	}
	return convertError(s.reader.Err())
}

func (s *eventStream) Close() error {
	return s.reader.Close()
}

// decodeChunk parses one chunk payload into a stream event
func decodeChunk(data []byte) (llm.StreamEvent, error) {
	var ev llm.StreamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return llm.StreamEvent{}, decodeError(err)
	}
	return ev, nil
}
