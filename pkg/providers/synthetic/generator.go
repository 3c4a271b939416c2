package synthetic

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-loremipsum/loremipsum"
	"github.com/mudler/xlog"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

// Request carries the few hints the generator reads from an intercepted call.
// Every field is optional.
type Request struct {
	Model     string
	MaxTokens int
	Prompt    string
	Limit     int
	BatchID   string
	Requests  int
}

// template builds the response of one operation
type template func(g *Generator, req Request) any

// templates maps operation paths to their response builders
var templates = map[llm.Operation]template{
	llm.OpMessagesCreate:      (*Generator).messageResponse,
	llm.OpMessagesStream:      (*Generator).streamResponse,
	llm.OpBetaMessagesCreate:  (*Generator).messageResponse,
	llm.OpBetaMessagesStream:  (*Generator).streamResponse,
	llm.OpCompletionsCreate:   (*Generator).completionResponse,
	llm.OpBatchesCreate:       (*Generator).batchCreateResponse,
	llm.OpBatchesRetrieve:     (*Generator).batchRetrieveResponse,
	llm.OpBatchesList:         (*Generator).batchListResponse,
	llm.OpBatchesCancel:       (*Generator).batchCancelResponse,
	llm.OpBatchesResults:      (*Generator).batchResultsResponse,
	llm.OpBetaBatchesCreate:   (*Generator).batchCreateResponse,
	llm.OpBetaBatchesRetrieve: (*Generator).batchRetrieveResponse,
	llm.OpBetaBatchesList:     (*Generator).batchListResponse,
	llm.OpBetaBatchesCancel:   (*Generator).batchCancelResponse,
	llm.OpBetaBatchesResults:  (*Generator).batchResultsResponse,
	llm.OpModelsList:          (*Generator).modelListResponse,
}

// categories is consulted by verb when the full path is not in templates
var categories = map[string]template{
	"create":   (*Generator).messageResponse,
	"stream":   (*Generator).streamResponse,
	"retrieve": (*Generator).batchRetrieveResponse,
	"list":     (*Generator).batchListResponse,
	"cancel":   (*Generator).batchCancelResponse,
	"results":  (*Generator).batchResultsResponse,
}

// Generator builds synthetic responses. It is safe for concurrent use.
type Generator struct {
	config Config

	mu    sync.Mutex
	ids   *IDGenerator
	lorem *loremipsum.LoremIpsum
}

// NewGenerator creates a generator; zero fields of config take their defaults
func NewGenerator(config Config) *Generator {
	cfg := config.withDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = randomSeed()
	}
	return &Generator{
		config: cfg,
		ids:    NewIDGenerator(seed),
		lorem:  loremipsum.NewWithSeed(seed),
	}
}

// Config returns the effective configuration
func (g *Generator) Config() Config {
	return g.config
}

// Supports reports whether op resolves to a template
func (g *Generator) Supports(op llm.Operation) bool {
	return lookup(op) != nil
}

// Generate builds the response of op. Unknown operations yield nil.
func (g *Generator) Generate(op llm.Operation, req Request) any {
	t := lookup(op)
	if t == nil {
		xlog.Debug("No synthetic template for operation", "operation", string(op))
		return nil
	}
	return t(g, req)
}

func lookup(op llm.Operation) template {
	if t, ok := templates[op]; ok {
		return t
	}
	if t, ok := categories[op.Verb()]; ok {
		return t
	}
	return nil
}

// Message builds a chat message response
func (g *Generator) Message(req Request) *llm.Message {
	return g.messageResponse(req).(*llm.Message)
}

// Stream builds a streamed chat response
func (g *Generator) Stream(req Request) llm.MessageStream {
	return g.streamResponse(req).(llm.MessageStream)
}

// Completion builds a legacy text completion
func (g *Generator) Completion(req Request) *llm.Completion {
	return g.completionResponse(req).(*llm.Completion)
}

// NewID returns a fresh identifier for prefix
func (g *Generator) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ids.New(prefix)
}

// Text returns a fresh filler paragraph
func (g *Generator) Text() string {
	if g.config.Text != nil {
		return g.config.Text()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lorem.Paragraph()
}

// boundedText returns filler text of at most maxWords words (no bound when maxWords <= 0)
func (g *Generator) boundedText(maxWords int) string {
	text := g.Text()
	if maxWords <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ")
}

func (g *Generator) model(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return g.config.Model
}

func (g *Generator) inputTokens(req Request) int {
	if n := len(strings.Fields(req.Prompt)); n > 0 {
		return n
	}
	return g.config.InputTokens
}

func (g *Generator) messageResponse(req Request) any {
	text := g.boundedText(req.MaxTokens)
	return &llm.Message{
		ID:      g.NewID(PrefixMessage),
		Type:    "message",
		Role:    llm.RoleAssistant,
		Content: []llm.ContentBlock{llm.NewTextContent(text)},
		Model:   g.model(req),
		// The text is cut at the bound, never reported as truncated
		StopReason: llm.StopReasonEndTurn,
		Usage: llm.Usage{
			InputTokens:  g.inputTokens(req),
			OutputTokens: len(strings.Fields(text)),
		},
	}
}

func (g *Generator) streamResponse(req Request) any {
	return newChunkStream(g.boundedText(req.MaxTokens), g.config.ChunkSize)
}

func (g *Generator) completionResponse(req Request) any {
	return &llm.Completion{
		ID:         g.NewID(PrefixCompletion),
		Type:       "completion",
		Completion: g.boundedText(req.MaxTokens),
		StopReason: llm.StopReasonLength,
		Model:      g.model(req),
	}
}

func (g *Generator) batchID(req Request) string {
	if req.BatchID != "" {
		return req.BatchID
	}
	return g.NewID(PrefixBatch)
}

func (g *Generator) resultsURL(id string) *string {
	url := fmt.Sprintf("%s/v1/messages/batches/%s/results", strings.TrimRight(g.config.BaseURL, "/"), id)
	return &url
}

func (g *Generator) at(d time.Duration) *time.Time {
	t := g.config.Epoch.Add(d)
	return &t
}

func (g *Generator) batchCreateResponse(req Request) any {
	n := req.Requests
	if n <= 0 {
		n = 1
	}
	return &llm.MessageBatch{
		ID:               g.NewID(PrefixBatch),
		Type:             "message_batch",
		ProcessingStatus: llm.BatchStatusInProgress,
		RequestCounts:    llm.RequestCounts{Processing: n},
		CreatedAt:        g.config.Epoch,
		ExpiresAt:        g.config.Epoch.Add(24 * time.Hour),
	}
}

func (g *Generator) completedBatch(id string) llm.MessageBatch {
	return llm.MessageBatch{
		ID:               id,
		Type:             "message_batch",
		ProcessingStatus: llm.BatchStatusCompleted,
		RequestCounts:    llm.RequestCounts{Succeeded: 1},
		CreatedAt:        g.config.Epoch,
		EndedAt:          g.at(time.Minute),
		ExpiresAt:        g.config.Epoch.Add(24 * time.Hour),
		ResultsURL:       g.resultsURL(id),
	}
}

func (g *Generator) batchRetrieveResponse(req Request) any {
	batch := g.completedBatch(g.batchID(req))
	return &batch
}

func (g *Generator) batchListResponse(req Request) any {
	n := g.config.ListSize
	if req.Limit > 0 && req.Limit < n {
		n = req.Limit
	}
	page := &llm.BatchPage{Data: make([]llm.MessageBatch, 0, n)}
	for i := 0; i < n; i++ {
		page.Data = append(page.Data, g.completedBatch(g.NewID(PrefixBatch)))
	}
	if n > 0 {
		page.FirstID = page.Data[0].ID
		page.LastID = page.Data[n-1].ID
	}
	return page
}

func (g *Generator) batchCancelResponse(req Request) any {
	id := g.batchID(req)
	return &llm.MessageBatch{
		ID:                id,
		Type:              "message_batch",
		ProcessingStatus:  llm.BatchStatusCanceled,
		RequestCounts:     llm.RequestCounts{Canceled: 1},
		CreatedAt:         g.config.Epoch,
		EndedAt:           g.at(time.Minute),
		ExpiresAt:         g.config.Epoch.Add(24 * time.Hour),
		CancelInitiatedAt: g.at(30 * time.Second),
		ResultsURL:        g.resultsURL(id),
	}
}

func (g *Generator) batchResultsResponse(req Request) any {
	return newResultsStream(g, Request{Model: req.Model}, g.config.ResultsSize)
}

func (g *Generator) modelListResponse(req Request) any {
	models := g.config.Models
	if req.Limit > 0 && req.Limit < len(models) {
		models = models[:req.Limit]
	}
	page := &llm.ModelPage{Data: make([]llm.Model, 0, len(models))}
	for i, id := range models {
		page.Data = append(page.Data, llm.Model{
			ID:          id,
			Type:        "model",
			DisplayName: displayName(id),
			CreatedAt:   g.config.Epoch.Add(time.Duration(i) * time.Hour),
		})
	}
	if len(page.Data) > 0 {
		page.FirstID = page.Data[0].ID
		page.LastID = page.Data[len(page.Data)-1].ID
	}
	return page
}

// displayName turns "claude-3-haiku-20240307" into "Claude 3 Haiku"
func displayName(id string) string {
	parts := strings.Split(id, "-")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) == 8 && strings.Trim(p, "0123456789") == "" {
			continue
		}
		if p == "" {
			continue
		}
		out = append(out, strings.ToUpper(p[:1])+p[1:])
	}
	return strings.Join(out, " ")
}
