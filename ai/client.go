package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/metrics"
	"github.com/tmc/langchaingo/llms"
)

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("empty response from language model")

// Client answers prompts as Mathy.
type Client struct {
	llm       llms.Model
	memory    *Memory
	ownerID   string
	modelName string
	logger    *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithMemory(memory *Memory) Option {
	return func(c *Client) {
		c.memory = memory
	}
}

// WithOwnerID sets the developer id given to the persona. It is redacted from
// every response.
func WithOwnerID(ownerID string) Option {
	return func(c *Client) {
		c.ownerID = ownerID
	}
}

func WithModelName(name string) Option {
	return func(c *Client) {
		c.modelName = name
	}
}

func NewClient(llm llms.Model, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		llm:    llm,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.memory == nil {
		c.memory = NewMemory(DefaultHistorySize)
	}
	return c
}

// Memory exposes the conversation memory.
func (c *Client) Memory() *Memory {
	return c.memory
}

// Generate sends prompt as is, without persona or memory. Used for the daily
// problem and vote summary.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt,
		llms.WithCandidateCount(1),
		llms.WithTemperature(0.9))
}

// Respond answers a user prompt in the Mathy persona, using the user's recent
// prompts and Mathy's last reply to them as context.
func (c *Client) Respond(ctx context.Context, userID, username, prompt string) (string, error) {
	c.memory.AddPrompt(userID, username, prompt)

	full := systemPrompt(c.ownerID) + "\n\n" + userTurnPrompt(
		c.memory.Transcript(userID),
		c.memory.LastReply(userID),
		username,
		userID,
		prompt,
	)
	c.logger.Debug("calling LLM for mention", "user", username, "promptLength", len(full))

	text, err := c.complete(ctx, full,
		llms.WithCandidateCount(1),
		llms.WithTemperature(0.7))
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(prompt, StatusQuotePrefix) {
		c.memory.SetLastReply(userID, text)
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	resp, err := c.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		c.logger.Error("failed to get LLM response", "model", c.modelName, "error", err.Error())
		metrics.FailedLLMGenCount.Add(1)
		return "", fmt.Errorf("failed to get llm response: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.EmptyLLMResponseCount.Add(1)
		return "", ErrEmptyResponse
	}

	text := CleanResponse(resp.Choices[0].Content, c.ownerID)
	if text == "" {
		c.logger.Warn("empty response from LLM", "model", c.modelName)
		metrics.EmptyLLMResponseCount.Add(1)
		return "", ErrEmptyResponse
	}

	metrics.SuccessfulLLMGenCount.Add(1)
	return text, nil
}
