// Message types and functionality
package llm

// MessageRole defines the role of a message sender
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// StopReason explains why the model stopped generating
type StopReason string

const (
	StopReasonEndTurn      StopReason = "end_turn"
	StopReasonMaxTokens    StopReason = "max_tokens"
	StopReasonStopSequence StopReason = "stop_sequence"
	StopReasonToolUse      StopReason = "tool_use"
	// StopReasonLength is reported by the legacy text completions API
	StopReasonLength StopReason = "length"
)

// MessageParam is one conversation turn sent to the model
type MessageParam struct {
	Role    MessageRole    `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewTextMessage creates a MessageParam holding a single text block
func NewTextMessage(role MessageRole, text string) MessageParam {
	return MessageParam{
		Role:    role,
		Content: []ContentBlock{NewTextContent(text)},
	}
}

// GetText returns the concatenated text of the turn
func (m MessageParam) GetText() string {
	return joinText(m.Content)
}

// MessageParams is the body of a messages create/stream call
type MessageParams struct {
	Model         string         `json:"model"`
	MaxTokens     int            `json:"max_tokens"`
	Messages      []MessageParam `json:"messages"`
	System        string         `json:"system,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty"`
	TopP          *float64       `json:"top_p,omitempty"`
	StopSequences []string       `json:"stop_sequences,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
}

// Message is a response produced by the messages API
type Message struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         MessageRole    `json:"role"`
	Content      []ContentBlock `json:"content"`
	Model        string         `json:"model"`
	StopReason   StopReason     `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}

// Usage represents token usage information
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GetText returns the concatenated text of every text block in the message
func (m Message) GetText() string {
	return joinText(m.Content)
}

// DeepCopy creates a copy of the message that shares no slices or pointers with the original
func (m Message) DeepCopy() Message {
	cp := m
	if m.Content != nil {
		cp.Content = make([]ContentBlock, len(m.Content))
		copy(cp.Content, m.Content)
	}
	if m.StopSequence != nil {
		seq := *m.StopSequence
		cp.StopSequence = &seq
	}
	return cp
}

// CompletionParams is the body of a legacy text completion call
type CompletionParams struct {
	Model             string   `json:"model"`
	Prompt            string   `json:"prompt"`
	MaxTokensToSample int      `json:"max_tokens_to_sample"`
	Temperature       *float64 `json:"temperature,omitempty"`
	StopSequences     []string `json:"stop_sequences,omitempty"`
}

// Completion is a response from the legacy text completions API
type Completion struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Completion string     `json:"completion"`
	StopReason StopReason `json:"stop_reason"`
	Model      string     `json:"model"`
}
