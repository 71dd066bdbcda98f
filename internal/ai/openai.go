package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openaiClient serves both OpenAI and OpenAI-compatible gateways such as
// OpenRouter; the gateway is selected purely by base URL.
type openaiClient struct {
	client   openai.Client
	defaults callDefaults
}

func newOpenAIClient(apiKey, baseURL string, defaults callDefaults) *openaiClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openaiClient{
		client:   openai.NewClient(opts...),
		defaults: defaults,
	}
}

func (c *openaiClient) params(req Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	}
}

func (c *openaiClient) Complete(ctx context.Context, req Request) (Response, error) {
	req = c.defaults.resolve(req)
	ctx, cancel := c.defaults.callContext(ctx)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		return Response{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("openai completion: empty choices")
	}

	return Response{
		Text:  resp.Choices[0].Message.Content,
		Model: req.Model,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}

func (c *openaiClient) Stream(ctx context.Context, req Request, fn func(Chunk) error) error {
	req = c.defaults.resolve(req)
	ctx, cancel := c.defaults.callContext(ctx)
	defer cancel()

	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(req))
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if err := fn(Chunk{Content: content}); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	return nil
}
