package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/mudler/xlog"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

const (
	// DefaultModel is used when the configuration names no model
	DefaultModel = "anthropic.claude-3-haiku-20240307-v1:0"

	// DefaultRegion is used when the configuration names no region
	DefaultRegion = "us-east-1"

	// anthropicVersion is the body version Bedrock expects for Claude models
	anthropicVersion = "bedrock-2023-05-31"
)

// Client implements llm.Backend for Anthropic models hosted on AWS Bedrock
type Client struct {
	bedrockClient        *bedrock.Client
	bedrockRuntimeClient *bedrockruntime.Client
	config               llm.ClientConfig
	region               string
}

// NewClient creates a new AWS Bedrock backend
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	cfg := config.WithDefaults()
	// The Anthropic base URL default does not apply to Bedrock endpoints
	cfg.BaseURL = config.BaseURL
	if cfg.Provider == "" {
		cfg.Provider = "bedrock"
	}

	// Get region from Extra config or use default
	region := DefaultRegion
	if r := cfg.Extra["region"]; r != "" {
		region = r
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMaxAttempts(cfg.MaxRetries + 1),
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(cfg.Timeout)),
	}
	if key := cfg.Extra["aws_access_key_id"]; key != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, cfg.Extra["aws_secret_access_key"], cfg.Extra["aws_session_token"]),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, &llm.Error{
			Code:    "aws_config_error",
			Message: fmt.Sprintf("Failed to load AWS configuration: %v", err),
			Type:    llm.ErrorTypeAuthentication,
			Err:     err,
		}
	}

	bedrockClient := bedrock.NewFromConfig(awsConfig, func(o *bedrock.Options) {
		if endpoint := cfg.Extra["bedrock_endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	bedrockRuntimeClient := bedrockruntime.NewFromConfig(awsConfig, func(o *bedrockruntime.Options) {
		if endpoint := cfg.Extra["bedrock_runtime_endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		// config.BaseURL wins, for consistency with the anthropic backend
		if config.BaseURL != "" {
			o.BaseEndpoint = aws.String(config.BaseURL)
		}
	})

	xlog.Debug("Created Bedrock backend", "region", region, "model", cfg.Model, "max_retries", cfg.MaxRetries)

	return &Client{
		bedrockClient:        bedrockClient,
		bedrockRuntimeClient: bedrockRuntimeClient,
		config:               cfg,
		region:               region,
	}, nil
}

// APIKey returns the configured credential label. Bedrock authenticates with
// the AWS credential chain, so a missing key is reported as the region label.
func (c *Client) APIKey() string {
	if c.config.APIKey != "" {
		return c.config.APIKey
	}
	return "bedrock:" + c.region
}

func (c *Client) Config() llm.ClientConfig {
	return c.config
}

// WithConfig returns a new backend built from config
func (c *Client) WithConfig(config llm.ClientConfig) (llm.Backend, error) {
	return NewClient(config)
}

// Region returns the AWS region the backend talks to
func (c *Client) Region() string {
	return c.region
}

func (c *Client) Messages() llm.MessagesAPI {
	return &messages{c: c, ns: "messages"}
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

func (c *Client) model(model string) string {
	if model == "" {
		return c.config.Model
	}
	return model
}

// invoke runs a non-streaming InvokeModel call and returns the body with the AWS request id
func (c *Client) invoke(ctx context.Context, model string, body any) ([]byte, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", encodeError(err)
	}

	response, err := c.bedrockRuntimeClient.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.model(model)),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, "", convertError(err)
	}

	requestID, _ := awsmiddleware.GetRequestIDMetadata(response.ResultMetadata)
	return response.Body, requestID, nil
}

// claudeMessage is one turn in the Bedrock Claude messages body
type claudeMessage struct {
	Role    llm.MessageRole    `json:"role"`
	Content []llm.ContentBlock `json:"content"`
}

// claudeRequest is the Bedrock Claude messages body. The model travels in the URL.
type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []claudeMessage `json:"messages"`
	System           string          `json:"system,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	StopSequences    []string        `json:"stop_sequences,omitempty"`
}

// convertToClaudeRequest converts message params to the Bedrock Claude body
func convertToClaudeRequest(params llm.MessageParams) claudeRequest {
	req := claudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        params.MaxTokens,
		System:           strings.TrimSpace(params.System),
		Temperature:      params.Temperature,
		TopP:             params.TopP,
		StopSequences:    params.StopSequences,
		Messages:         make([]claudeMessage, 0, len(params.Messages)),
	}
	for _, msg := range params.Messages {
		req.Messages = append(req.Messages, claudeMessage{Role: msg.Role, Content: msg.Content})
	}
	return req
}

type messages struct {
	c  *Client
	ns string
}

func (s *messages) Create(ctx context.Context, params llm.MessageParams) (*llm.Message, error) {
	body, _, err := s.c.invoke(ctx, params.Model, convertToClaudeRequest(params))
	if err != nil {
		return nil, err
	}

	var msg llm.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, decodeError(err)
	}
	if msg.Model == "" {
		msg.Model = s.c.model(params.Model)
	}
	return &msg, nil
}

func (s *messages) Stream(ctx context.Context, params llm.MessageParams) (llm.MessageStream, error) {
	payload, err := json.Marshal(convertToClaudeRequest(params))
	if err != nil {
		return nil, encodeError(err)
	}

	response, err := s.c.bedrockRuntimeClient.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(s.c.model(params.Model)),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, convertError(err)
	}

	return newEventStream(response.GetStream()), nil
}

// Batches is not offered by the Bedrock runtime. Batch inference there runs
// through S3-backed invocation jobs.
func (s *messages) Batches() llm.BatchesAPI {
	return &batches{ns: llm.Join(s.ns, "batches")}
}

type batches struct {
	ns llm.Operation
}

func (b *batches) unsupported(verb string) error {
	return llm.NewUnsupportedError("bedrock", llm.Join(string(b.ns), verb).String())
}

func (b *batches) Create(ctx context.Context, params llm.BatchCreateParams) (*llm.MessageBatch, error) {
	return nil, b.unsupported("create")
}

func (b *batches) Retrieve(ctx context.Context, batchID string) (*llm.MessageBatch, error) {
	return nil, b.unsupported("retrieve")
}

func (b *batches) List(ctx context.Context, params llm.BatchListParams) (*llm.BatchPage, error) {
	return nil, b.unsupported("list")
}

func (b *batches) Cancel(ctx context.Context, batchID string) (*llm.MessageBatch, error) {
	return nil, b.unsupported("cancel")
}

func (b *batches) Results(ctx context.Context, batchID string) (llm.BatchResultStream, error) {
	return nil, b.unsupported("results")
}

// completionRequest is the legacy Claude v2 text completion body
type completionRequest struct {
	Prompt            string   `json:"prompt"`
	MaxTokensToSample int      `json:"max_tokens_to_sample"`
	Temperature       *float64 `json:"temperature,omitempty"`
	StopSequences     []string `json:"stop_sequences,omitempty"`
}

type completions struct {
	c *Client
}

func (s *completions) Create(ctx context.Context, params llm.CompletionParams) (*llm.Completion, error) {
	body, requestID, err := s.c.invoke(ctx, params.Model, completionRequest{
		Prompt:            params.Prompt,
		MaxTokensToSample: params.MaxTokensToSample,
		Temperature:       params.Temperature,
		StopSequences:     params.StopSequences,
	})
	if err != nil {
		return nil, err
	}

	var completion llm.Completion
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, decodeError(err)
	}
	if completion.ID == "" {
		completion.ID = requestID
	}
	completion.Type = "completion"
	completion.Model = s.c.model(params.Model)
	return &completion, nil
}

type models struct {
	c *Client
}

// List returns the Anthropic foundation models of the region
func (s *models) List(ctx context.Context, params llm.ModelListParams) (*llm.ModelPage, error) {
	out, err := s.c.bedrockClient.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{
		ByProvider: aws.String("Anthropic"),
	})
	if err != nil {
		return nil, convertError(err)
	}

	page := &llm.ModelPage{Data: make([]llm.Model, 0, len(out.ModelSummaries))}
	for _, summary := range out.ModelSummaries {
		if params.Limit > 0 && len(page.Data) == params.Limit {
			page.HasMore = true
			break
		}
		page.Data = append(page.Data, llm.Model{
			ID:          aws.ToString(summary.ModelId),
			Type:        "model",
			DisplayName: aws.ToString(summary.ModelName),
		})
	}
	if len(page.Data) > 0 {
		page.FirstID = page.Data[0].ID
		page.LastID = page.Data[len(page.Data)-1].ID
	}
	return page, nil
}

type beta struct {
	c *Client
}

func (b beta) Messages() llm.MessagesAPI {
	return &messages{c: b.c, ns: "beta.messages"}
}

func encodeError(err error) error {
	return &llm.Error{
		Code:    "encode_error",
		Message: fmt.Sprintf("failed to encode request: %v", err),
		Type:    llm.ErrorTypeInvalidRequest,
		Err:     err,
	}
}

func decodeError(err error) error {
	return &llm.Error{
		Code:    "decode_error",
		Message: fmt.Sprintf("failed to decode Bedrock payload: %v", err),
		Type:    llm.ErrorTypeAPI,
		Err:     err,
	}
}

// convertError converts AWS errors to our internal error format. Context
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

	status := 0
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return &llm.Error{
			Code:       "api_error",
			Message:    err.Error(),
			Type:       llm.ErrorTypeAPI,
			StatusCode: status,
			Err:        err,
		}
	}

	errType := llm.ErrorTypeAPI
	switch apiErr.ErrorCode() {
	case "UnrecognizedClientException", "InvalidSignatureException", "ExpiredTokenException":
		errType = llm.ErrorTypeAuthentication
		if status == 0 {
			status = http.StatusUnauthorized
		}
	case "AccessDeniedException":
		errType = llm.ErrorTypePermission
		if status == 0 {
			status = http.StatusForbidden
		}
	case "ThrottlingException", "TooManyRequestsException", "ServiceQuotaExceededException":
		errType = llm.ErrorTypeRateLimit
		if status == 0 {
			status = http.StatusTooManyRequests
		}
	case "ResourceNotFoundException":
		errType = llm.ErrorTypeNotFound
	case "ValidationException":
		errType = llm.ErrorTypeInvalidRequest
	case "ModelNotReadyException", "ServiceUnavailableException":
		errType = llm.ErrorTypeOverloaded
	}

	return &llm.Error{
		Code:       apiErr.ErrorCode(),
		Message:    apiErr.ErrorMessage(),
		Type:       errType,
		StatusCode: status,
		Err:        err,
	}
}

var (
	_ llm.Backend        = (*Client)(nil)
	_ llm.Configured     = (*Client)(nil)
	_ llm.Reconfigurable = (*Client)(nil)
)
