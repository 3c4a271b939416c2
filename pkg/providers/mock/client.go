package mock

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

// secureRandomFloat64 generates a cryptographically secure random float64 between 0 and 1
func secureRandomFloat64() (float64, error) {
	var bytes [8]byte
	_, err := rand.Read(bytes[:])
	if err != nil {
		return 0, err
	}
	return float64(binary.BigEndian.Uint64(bytes[:])) / float64(^uint64(0)), nil
}

// Call is one operation received by the mock
type Call struct {
	Operation llm.Operation
	Params    any
}

// Client implements llm.Backend for testing. Every operation is recorded in the
// call log before it is answered.
type Client struct {
	mu sync.Mutex

	config llm.ClientConfig

	messages    []llm.Message
	completions []llm.Completion
	streams     [][]llm.StreamEvent
	errors      []error
	models      []llm.Model

	batches map[string]*llm.MessageBatch
	order   []string
	nextID  int

	callLog           []Call
	latencySimulation time.Duration
	failureRate       float64
}

// NewClient creates a new mock backend authenticating with apiKey
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(llm.ClientConfig{Provider: "mock", APIKey: apiKey})
}

// NewClientWithConfig creates a new mock backend reporting config
func NewClientWithConfig(config llm.ClientConfig) *Client {
	return &Client{
		config:  config.WithDefaults(),
		batches: make(map[string]*llm.MessageBatch),
	}
}

func (m *Client) APIKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config.APIKey
}

// SetAPIKey replaces the credential reported from now on
func (m *Client) SetAPIKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.APIKey = key
}

func (m *Client) Config() llm.ClientConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// WithConfig returns a new mock with config and the same scripted responses
func (m *Client) WithConfig(config llm.ClientConfig) (llm.Backend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	derived := NewClientWithConfig(config)
	derived.messages = append(derived.messages, m.messages...)
	derived.completions = append(derived.completions, m.completions...)
	derived.streams = append(derived.streams, m.streams...)
	derived.errors = append(derived.errors, m.errors...)
	derived.models = append(derived.models, m.models...)
	derived.latencySimulation = m.latencySimulation
	derived.failureRate = m.failureRate
	return derived, nil
}

func (m *Client) Messages() llm.MessagesAPI {
	return &messages{m: m, ns: "messages"}
}

func (m *Client) Completions() llm.CompletionsAPI {
	return completions{m: m}
}

func (m *Client) Models() llm.ModelsAPI {
	return models{m: m}
}

func (m *Client) Beta() llm.BetaAPI {
	return beta{m: m}
}

// begin records the call and applies the simulated latency, failures and
// scripted errors. A nil error means the operation should be answered.
func (m *Client) begin(ctx context.Context, op llm.Operation, params any) error {
	m.mu.Lock()
	m.callLog = append(m.callLog, Call{Operation: op, Params: params})
	latency := m.latencySimulation
	rate := m.failureRate
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if rate > 0 {
		randomValue, err := secureRandomFloat64()
		if err != nil {
			randomValue = 0
		}
		if randomValue < rate {
			return &llm.Error{
				Code:    "mock_random_failure",
				Message: "Simulated random failure",
				Type:    llm.ErrorTypeAPI,
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errors) > 0 {
		err := m.errors[0]
		m.errors = m.errors[1:]
		return err
	}
	return nil
}

func (m *Client) nextMessage(params llm.MessageParams) *llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) > 0 {
		msg := m.messages[0]
		m.messages = m.messages[1:]
		cp := msg.DeepCopy()
		return &cp
	}
	return m.generateResponse(params)
}

// generateResponse echoes the last user message
func (m *Client) generateResponse(params llm.MessageParams) *llm.Message {
	var lastUserMessage string
	for i := len(params.Messages) - 1; i >= 0; i-- {
		if params.Messages[i].Role == llm.RoleUser {
			lastUserMessage = params.Messages[i].GetText()
			break
		}
	}

	var response string
	lowerMsg := strings.ToLower(lastUserMessage)
	switch {
	case strings.Contains(lowerMsg, "hello") || strings.Contains(lowerMsg, "hi"):
		response = "Hello! How can I help you today?"
	case strings.Contains(lowerMsg, "help"):
		response = "I'm here to help! I can assist with various tasks."
	default:
		response = fmt.Sprintf("I understand you're asking about: %s. Let me help you with that.", lastUserMessage)
	}

	model := params.Model
	if model == "" {
		model = m.config.Model
	}
	m.nextID++
	return &llm.Message{
		ID:         fmt.Sprintf("msg_mock_%d", m.nextID),
		Type:       "message",
		Role:       llm.RoleAssistant,
		Content:    []llm.ContentBlock{llm.NewTextContent(response)},
		Model:      model,
		StopReason: llm.StopReasonEndTurn,
		Usage: llm.Usage{
			InputTokens:  len(strings.Fields(lastUserMessage)) + 5,
			OutputTokens: len(strings.Fields(response)),
		},
	}
}

type messages struct {
	m  *Client
	ns string
}

func (s *messages) Create(ctx context.Context, params llm.MessageParams) (*llm.Message, error) {
	if err := s.m.begin(ctx, llm.Join(s.ns, "create"), params); err != nil {
		return nil, err
	}
	return s.m.nextMessage(params), nil
}

func (s *messages) Stream(ctx context.Context, params llm.MessageParams) (llm.MessageStream, error) {
	if err := s.m.begin(ctx, llm.Join(s.ns, "stream"), params); err != nil {
		return nil, err
	}

	s.m.mu.Lock()
	if len(s.m.streams) > 0 {
		events := s.m.streams[0]
		s.m.streams = s.m.streams[1:]
		s.m.mu.Unlock()
		return llm.NewSliceStream(events), nil
	}
	s.m.mu.Unlock()

	return llm.NewSliceStream(CreateWordByWordStream(s.m.nextMessage(params).GetText())), nil
}

func (s *messages) Batches() llm.BatchesAPI {
	return &batches{m: s.m, ns: s.ns + ".batches"}
}

type batches struct {
	m  *Client
	ns string
}

func (s *batches) Create(ctx context.Context, params llm.BatchCreateParams) (*llm.MessageBatch, error) {
	if err := s.m.begin(ctx, llm.Join(s.ns, "create"), params); err != nil {
		return nil, err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.nextID++
	now := time.Now().UTC()
	batch := &llm.MessageBatch{
		ID:               fmt.Sprintf("batch_mock_%d", s.m.nextID),
		Type:             "message_batch",
		ProcessingStatus: llm.BatchStatusInProgress,
		RequestCounts:    llm.RequestCounts{Processing: len(params.Requests)},
		CreatedAt:        now,
		ExpiresAt:        now.Add(24 * time.Hour),
	}
	s.m.batches[batch.ID] = batch
	s.m.order = append(s.m.order, batch.ID)
	cp := *batch
	return &cp, nil
}

func (s *batches) lookup(batchID string) (*llm.MessageBatch, error) {
	batch, ok := s.m.batches[batchID]
	if !ok {
		return nil, &llm.Error{
			Code:       "not_found",
			Message:    fmt.Sprintf("batch %q not found", batchID),
			Type:       llm.ErrorTypeNotFound,
			StatusCode: 404,
		}
	}
	return batch, nil
}

func (s *batches) Retrieve(ctx context.Context, batchID string) (*llm.MessageBatch, error) {
	if err := s.m.begin(ctx, llm.Join(s.ns, "retrieve"), batchID); err != nil {
		return nil, err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	batch, err := s.lookup(batchID)
	if err != nil {
		return nil, err
	}
	cp := *batch
	return &cp, nil
}

func (s *batches) List(ctx context.Context, params llm.BatchListParams) (*llm.BatchPage, error) {
	if err := s.m.begin(ctx, llm.Join(s.ns, "list"), params); err != nil {
		return nil, err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	page := &llm.BatchPage{}
	for _, id := range s.m.order {
		if params.Limit > 0 && len(page.Data) == params.Limit {
			page.HasMore = true
			break
		}
		page.Data = append(page.Data, *s.m.batches[id])
	}
	if len(page.Data) > 0 {
		page.FirstID = page.Data[0].ID
		page.LastID = page.Data[len(page.Data)-1].ID
	}
	return page, nil
}

func (s *batches) Cancel(ctx context.Context, batchID string) (*llm.MessageBatch, error) {
	if err := s.m.begin(ctx, llm.Join(s.ns, "cancel"), batchID); err != nil {
		return nil, err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	batch, err := s.lookup(batchID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	batch.ProcessingStatus = llm.BatchStatusCanceling
	batch.CancelInitiatedAt = &now
	cp := *batch
	return &cp, nil
}

func (s *batches) Results(ctx context.Context, batchID string) (llm.BatchResultStream, error) {
	if err := s.m.begin(ctx, llm.Join(s.ns, "results"), batchID); err != nil {
		return nil, err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	batch, err := s.lookup(batchID)
	if err != nil {
		return nil, err
	}
	results := make([]llm.BatchIndividualResponse, 0, batch.RequestCounts.Total())
	for i := 0; i < batch.RequestCounts.Total(); i++ {
		results = append(results, llm.BatchIndividualResponse{
			CustomID: fmt.Sprintf("request-%d", i),
			Result: llm.BatchResult{
				Type:    llm.BatchResultSucceeded,
				Message: s.m.generateResponse(llm.MessageParams{}),
			},
		})
	}
	return llm.NewSliceStream(results), nil
}

type completions struct {
	m *Client
}

func (s completions) Create(ctx context.Context, params llm.CompletionParams) (*llm.Completion, error) {
	if err := s.m.begin(ctx, llm.OpCompletionsCreate, params); err != nil {
		return nil, err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if len(s.m.completions) > 0 {
		c := s.m.completions[0]
		s.m.completions = s.m.completions[1:]
		return &c, nil
	}
	s.m.nextID++
	return &llm.Completion{
		ID:         fmt.Sprintf("compl_mock_%d", s.m.nextID),
		Type:       "completion",
		Completion: " This is a mock completion.",
		StopReason: llm.StopReasonStopSequence,
		Model:      params.Model,
	}, nil
}

type models struct {
	m *Client
}

func (s models) List(ctx context.Context, params llm.ModelListParams) (*llm.ModelPage, error) {
	if err := s.m.begin(ctx, llm.OpModelsList, params); err != nil {
		return nil, err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	data := s.m.models
	if params.Limit > 0 && params.Limit < len(data) {
		data = data[:params.Limit]
	}
	page := &llm.ModelPage{Data: append([]llm.Model(nil), data...)}
	if len(page.Data) > 0 {
		page.FirstID = page.Data[0].ID
		page.LastID = page.Data[len(page.Data)-1].ID
	}
	page.HasMore = len(data) < len(s.m.models)
	return page, nil
}

type beta struct {
	m *Client
}

func (b beta) Messages() llm.MessagesAPI {
	return &messages{m: b.m, ns: "beta.messages"}
}

// Test helper methods

// AddResponse adds a message to be returned by subsequent message calls
func (m *Client) AddResponse(response llm.Message) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, response)
	return m
}

// AddCompletion adds a completion to be returned by subsequent completion calls
func (m *Client) AddCompletion(completion llm.Completion) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = append(m.completions, completion)
	return m
}

// AddError adds an error to be returned by the next call, whatever its operation
func (m *Client) AddError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
	return m
}

// GetCallLog returns all operations received by this mock
func (m *Client) GetCallLog() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.callLog...)
}

// GetLastCall returns the most recent operation received by this mock
func (m *Client) GetLastCall() *Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.callLog) == 0 {
		return nil
	}
	c := m.callLog[len(m.callLog)-1]
	return &c
}

// Reset clears all scripted responses, errors, batches and the call log
func (m *Client) Reset() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.completions = nil
	m.streams = nil
	m.errors = nil
	m.callLog = nil
	m.batches = make(map[string]*llm.MessageBatch)
	m.order = nil
	return m
}

// Convenience methods for common test scenarios

// WithSimpleResponse adds a text message response
func (m *Client) WithSimpleResponse(content string) *Client {
	return m.AddResponse(llm.Message{
		ID:         "msg_mock_simple",
		Type:       "message",
		Role:       llm.RoleAssistant,
		Content:    []llm.ContentBlock{llm.NewTextContent(content)},
		Model:      m.Config().Model,
		StopReason: llm.StopReasonEndTurn,
		Usage: llm.Usage{
			InputTokens:  10,
			OutputTokens: len(strings.Fields(content)),
		},
	})
}

// WithError adds an API error response
func (m *Client) WithError(code, message, errorType string, statusCode int) *Client {
	return m.AddError(&llm.Error{
		Code:       code,
		Message:    message,
		Type:       errorType,
		StatusCode: statusCode,
	})
}

// WithLatency configures simulated latency for requests
func (m *Client) WithLatency(duration time.Duration) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySimulation = duration
	return m
}

// WithFailureRate configures random failure simulation (0.0 to 1.0)
func (m *Client) WithFailureRate(rate float64) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureRate = rate
	return m
}

// WithStreamResponse adds a pre-configured streaming response
func (m *Client) WithStreamResponse(events []llm.StreamEvent) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streams = append(m.streams, events)
	return m
}

// WithModels sets the models reported by Models().List
func (m *Client) WithModels(ids ...string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = m.models[:0]
	for _, id := range ids {
		m.models = append(m.models, llm.Model{ID: id, Type: "model", DisplayName: id})
	}
	return m
}

// Streaming response helpers

// CreateWordByWordStream creates stream events that deliver text one word at a time
func CreateWordByWordStream(text string) []llm.StreamEvent {
	words := strings.Fields(text)
	events := make([]llm.StreamEvent, 0, len(words))
	for i, word := range words {
		if i > 0 {
			word = " " + word
		}
		events = append(events, llm.NewTextDeltaEvent(0, word))
	}
	return events
}

// Test assertion helpers

// CallCount returns the number of operations received
func (m *Client) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.callLog)
}

// AssertCallCount verifies the number of calls made
func (m *Client) AssertCallCount(expected int) bool {
	return m.CallCount() == expected
}

// AssertOperationCalled checks whether op was received at least once
func (m *Client) AssertOperationCalled(op llm.Operation) bool {
	for _, c := range m.GetCallLog() {
		if c.Operation == op {
			return true
		}
	}
	return false
}

// AssertLastMessageContains checks if the last user message of the most recent
// message call contains text
func (m *Client) AssertLastMessageContains(text string) bool {
	log := m.GetCallLog()
	for i := len(log) - 1; i >= 0; i-- {
		params, ok := log[i].Params.(llm.MessageParams)
		if !ok {
			continue
		}
		for j := len(params.Messages) - 1; j >= 0; j-- {
			if params.Messages[j].Role == llm.RoleUser {
				return strings.Contains(params.Messages[j].GetText(), text)
			}
		}
		return false
	}
	return false
}

var (
	_ llm.Backend        = (*Client)(nil)
	_ llm.Configured     = (*Client)(nil)
	_ llm.Reconfigurable = (*Client)(nil)
)
