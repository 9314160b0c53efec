package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strconv"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/blopez6567/Clashsense/internal/common"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "claude-sonnet-4-20250514"

const systemPrompt = "You are an expert BIM coordinator specializing in clash detection and resolution. " +
	"Analyze the provided clash data and suggest practical solutions. " +
	"Focus on providing actionable insights and specific recommendations for each clash."

var statusCodePattern = regexp.MustCompile(`(?:status(?:\s+code)?[:=\s]+|":\s+)(\d{3})\b`)

// MessageCreator is the subset of the Anthropic messages API the client uses.
type MessageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Config configures a Client.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Retry       common.RetryOptions
}

// Client requests resolution suggestions from a language model.
type Client struct {
	messages    MessageCreator
	model       string
	maxTokens   int64
	temperature float64
	retry       common.RetryOptions
}

// NewClient creates a Client backed by the Anthropic API.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: analysis API key is required", common.ErrMissingConfig)
	}
	// Retries are handled by common.WithRetry.
	c := anthropic.NewClient(option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0))
	return NewClientWithMessages(&c.Messages, cfg), nil
}

// NewClientWithMessages creates a Client over an existing messages API.
func NewClientWithMessages(messages MessageCreator, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	return &Client{
		messages:    messages,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
		retry:       cfg.Retry,
	}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends req and returns the model's suggestions. Rate-limit failures
// that persist after retries satisfy errors.Is(err, common.ErrRateLimit).
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	if len(req.Clashes) == 0 {
		return nil, common.ErrNoClashes
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}
	prompt := "Analyze these clashes and provide detailed resolution suggestions: " + string(body)

	text, err := c.complete(ctx, systemPrompt, anthropic.NewTextBlock(prompt))
	if err != nil {
		return nil, err
	}

	slog.Info("Clash analysis complete",
		"model", c.model,
		"analyzed", len(req.Clashes),
		"total", req.TotalClashes)

	return &Result{
		Analysis:        text,
		AnalyzedClashes: len(req.Clashes),
		TotalClashes:    req.TotalClashes,
	}, nil
}

// complete sends one user message built from blocks and returns the text of
// the reply. Failures wrap common.ErrAnalysisFailed.
func (c *Client) complete(ctx context.Context, system string, blocks ...anthropic.ContentBlockParamUnion) (string, error) {
	var text string
	err := common.WithRetry(ctx, func() error {
		resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(c.model),
			MaxTokens:   c.maxTokens,
			System:      []anthropic.TextBlockParam{{Text: system}},
			Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
			Temperature: anthropic.Float(c.temperature),
		})
		if err != nil {
			return classifyError(err)
		}
		text = responseText(resp)
		if text == "" {
			return &common.RetryableError{Err: errors.New("empty response from model"), Retryable: false}
		}
		return nil
	}, c.retry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrAnalysisFailed, err)
	}
	return text, nil
}

func responseText(resp *anthropic.Message) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// classifyError marks rate limits, server errors and timeouts retryable.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return &common.RetryableError{Err: err, Retryable: false}
	}
	if common.IsRetryable(err) {
		return &common.RetryableError{Err: err, Retryable: true}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &common.RetryableError{Err: err, Retryable: true}
	}

	code := statusCode(err)
	switch {
	case code == 429:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
	case code >= 500:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

func statusCode(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	if m := statusCodePattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code
	}
	return 0
}
