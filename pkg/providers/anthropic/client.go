package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mudler/xlog"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

// Client implements llm.Backend on top of the Anthropic SDK
type Client struct {
	client sdk.Client
	config llm.ClientConfig
}

// NewClient creates a new Anthropic backend
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_credential",
			Message: "Anthropic API key is required",
			Type:    llm.ErrorTypeConfiguration,
		}
	}
	cfg := config.WithDefaults()
	if cfg.Provider == "" {
		cfg.Provider = "anthropic"
	}

	client := sdk.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.Timeout),
	)

	xlog.Debug("Created Anthropic backend", "base_url", cfg.BaseURL, "model", cfg.Model, "max_retries", cfg.MaxRetries)

	return &Client{client: client, config: cfg}, nil
}

func (c *Client) APIKey() string {
	return c.config.APIKey
}

func (c *Client) Config() llm.ClientConfig {
	return c.config
}

// WithConfig returns a new backend built from config
func (c *Client) WithConfig(config llm.ClientConfig) (llm.Backend, error) {
	return NewClient(config)
}

func (c *Client) Messages() llm.MessagesAPI {
	return &messages{c: c}
}

func (c *Client) Completions() llm.CompletionsAPI {
	return &completions{c: c}
}

func (c *Client) Models() llm.ModelsAPI {
	return &models{c: c}
}

func (c *Client) Beta() llm.BetaAPI {
	return beta{c: c}
}

func (c *Client) model(model string) sdk.Model {
	if model == "" {
		model = c.config.Model
	}
	return sdk.Model(model)
}

// messageParams converts our message params to the SDK's
func (c *Client) messageParams(p llm.MessageParams) sdk.MessageNewParams {
	params := sdk.MessageNewParams{
		Model:         c.model(p.Model),
		MaxTokens:     int64(p.MaxTokens),
		Messages:      convertMessages(p.Messages),
		StopSequences: p.StopSequences,
	}
	if p.System != "" {
		params.System = []sdk.TextBlockParam{{Text: p.System}}
	}
	if p.Temperature != nil {
		params.Temperature = sdk.Float(*p.Temperature)
	}
	if p.TopP != nil {
		params.TopP = sdk.Float(*p.TopP)
	}
	return params
}

// batchRequestParams converts our message params to the SDK's batch request form
func (c *Client) batchRequestParams(p llm.MessageParams) sdk.MessageBatchNewParamsRequestParams {
	params := sdk.MessageBatchNewParamsRequestParams{
		Model:         c.model(p.Model),
		MaxTokens:     int64(p.MaxTokens),
		Messages:      convertMessages(p.Messages),
		StopSequences: p.StopSequences,
	}
	if p.System != "" {
		params.System = []sdk.TextBlockParam{{Text: p.System}}
	}
	if p.Temperature != nil {
		params.Temperature = sdk.Float(*p.Temperature)
	}
	if p.TopP != nil {
		params.TopP = sdk.Float(*p.TopP)
	}
	return params
}

func convertMessages(msgs []llm.MessageParam) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		blocks := make([]sdk.ContentBlockParamUnion, 0, len(m.Content))
		for _, block := range m.Content {
			if block.IsText() {
				blocks = append(blocks, sdk.NewTextBlock(block.Text))
			}
		}
		if m.Role == llm.RoleAssistant {
			out = append(out, sdk.NewAssistantMessage(blocks...))
		} else {
			out = append(out, sdk.NewUserMessage(blocks...))
		}
	}
	return out
}

// rawJSON is implemented by every SDK response type
type rawJSON interface {
	RawJSON() string
}

// fromRaw decodes the wire form of an SDK response into one of our types
func fromRaw[T any](v rawJSON) (*T, error) {
	var out T
	if err := json.Unmarshal([]byte(v.RawJSON()), &out); err != nil {
		return nil, &llm.Error{
			Code:    "decode_error",
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Type:    llm.ErrorTypeAPI,
			Err:     err,
		}
	}
	return &out, nil
}

type messages struct {
	c *Client
}

func (s *messages) Create(ctx context.Context, params llm.MessageParams) (*llm.Message, error) {
	resp, err := s.c.client.Messages.New(ctx, s.c.messageParams(params))
	if err != nil {
		return nil, convertError(err)
	}
	return fromRaw[llm.Message](resp)
}

func (s *messages) Stream(ctx context.Context, params llm.MessageParams) (llm.MessageStream, error) {
	it := s.c.client.Messages.NewStreaming(ctx, s.c.messageParams(params))
	return newStream[llm.StreamEvent, sdk.MessageStreamEventUnion](it), nil
}

func (s *messages) Batches() llm.BatchesAPI {
	return &batches{c: s.c}
}

type batches struct {
	c *Client
}

func (s *batches) Create(ctx context.Context, params llm.BatchCreateParams) (*llm.MessageBatch, error) {
	requests := make([]sdk.MessageBatchNewParamsRequest, 0, len(params.Requests))
	for _, r := range params.Requests {
		requests = append(requests, sdk.MessageBatchNewParamsRequest{
			CustomID: r.CustomID,
			Params:   s.c.batchRequestParams(r.Params),
		})
	}
	resp, err := s.c.client.Messages.Batches.New(ctx, sdk.MessageBatchNewParams{Requests: requests})
	if err != nil {
		return nil, convertError(err)
	}
	return fromRaw[llm.MessageBatch](resp)
}

func (s *batches) Retrieve(ctx context.Context, batchID string) (*llm.MessageBatch, error) {
	resp, err := s.c.client.Messages.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, convertError(err)
	}
	return fromRaw[llm.MessageBatch](resp)
}

func (s *batches) List(ctx context.Context, params llm.BatchListParams) (*llm.BatchPage, error) {
	query := sdk.MessageBatchListParams{}
	if params.Limit > 0 {
		query.Limit = sdk.Int(int64(params.Limit))
	}
	if params.AfterID != "" {
		query.AfterID = sdk.String(params.AfterID)
	}
	if params.BeforeID != "" {
		query.BeforeID = sdk.String(params.BeforeID)
	}

	resp, err := s.c.client.Messages.Batches.List(ctx, query)
	if err != nil {
		return nil, convertError(err)
	}
	return fromRaw[llm.BatchPage](resp)
}

func (s *batches) Cancel(ctx context.Context, batchID string) (*llm.MessageBatch, error) {
	resp, err := s.c.client.Messages.Batches.Cancel(ctx, batchID)
	if err != nil {
		return nil, convertError(err)
	}
	return fromRaw[llm.MessageBatch](resp)
}

func (s *batches) Results(ctx context.Context, batchID string) (llm.BatchResultStream, error) {
	it := s.c.client.Messages.Batches.ResultsStreaming(ctx, batchID)
	return newStream[llm.BatchIndividualResponse, sdk.MessageBatchIndividualResponse](it), nil
}

type completions struct {
	c *Client
}

func (s *completions) Create(ctx context.Context, params llm.CompletionParams) (*llm.Completion, error) {
	query := sdk.CompletionNewParams{
		Model:             s.c.model(params.Model),
		Prompt:            params.Prompt,
		MaxTokensToSample: int64(params.MaxTokensToSample),
		StopSequences:     params.StopSequences,
	}
	if params.Temperature != nil {
		query.Temperature = sdk.Float(*params.Temperature)
	}

	resp, err := s.c.client.Completions.New(ctx, query)
	if err != nil {
		return nil, convertError(err)
	}
	return fromRaw[llm.Completion](resp)
}

type models struct {
	c *Client
}

func (s *models) List(ctx context.Context, params llm.ModelListParams) (*llm.ModelPage, error) {
	query := sdk.ModelListParams{}
	if params.Limit > 0 {
		query.Limit = sdk.Int(int64(params.Limit))
	}

	resp, err := s.c.client.Models.List(ctx, query)
	if err != nil {
		return nil, convertError(err)
	}
	return fromRaw[llm.ModelPage](resp)
}

type beta struct {
	c *Client
}

func (b beta) Messages() llm.MessagesAPI {
	return &messages{c: b.c}
}

// convertError converts SDK errors to our internal error format. Context
// cancellation is returned unchanged.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var ourErr *llm.Error
	if errors.As(err, &ourErr) {
		return ourErr
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return &llm.Error{
			Code:       http.StatusText(apiErr.StatusCode),
			Message:    apiErr.Error(),
			Type:       errorType(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}

	return &llm.Error{
		Code:    "api_error",
		Message: err.Error(),
		Type:    llm.ErrorTypeAPI,
		Err:     err,
	}
}

// errorType maps HTTP status codes to API error types
func errorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return llm.ErrorTypeInvalidRequest
	case http.StatusUnauthorized:
		return llm.ErrorTypeAuthentication
	case http.StatusForbidden:
		return llm.ErrorTypePermission
	case http.StatusNotFound:
		return llm.ErrorTypeNotFound
	case http.StatusTooManyRequests:
		return llm.ErrorTypeRateLimit
	case 529:
		return llm.ErrorTypeOverloaded
	default:
		return llm.ErrorTypeAPI
	}
}

var (
	_ llm.Backend        = (*Client)(nil)
	_ llm.Configured     = (*Client)(nil)
	_ llm.Reconfigurable = (*Client)(nil)
)
