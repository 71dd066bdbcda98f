package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicClient struct {
	client   anthropic.Client
	defaults callDefaults
}

func newAnthropicClient(apiKey string, defaults callDefaults) *anthropicClient {
	return &anthropicClient{
		client:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		defaults: defaults,
	}
}

func (c *anthropicClient) params(req Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params
}

func (c *anthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	req = c.defaults.resolve(req)
	ctx, cancel := c.defaults.callContext(ctx)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, c.params(req))
	if err != nil {
		return Response{}, fmt.Errorf("anthropic completion: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return Response{
		Text:  text.String(),
		Model: req.Model,
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

func (c *anthropicClient) Stream(ctx context.Context, req Request, fn func(Chunk) error) error {
	req = c.defaults.resolve(req)
	ctx, cancel := c.defaults.callContext(ctx)
	defer cancel()

	stream := c.client.Messages.NewStreaming(ctx, c.params(req))
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if ev.Delta.Text == "" {
				continue
			}
			if err := fn(Chunk{Content: ev.Delta.Text}); err != nil {
				return err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic stream: %w", err)
	}
	return nil
}
