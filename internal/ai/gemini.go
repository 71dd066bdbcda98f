package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type geminiClient struct {
	client   *genai.Client
	defaults callDefaults
}

func newGeminiClient(ctx context.Context, apiKey string, defaults callDefaults) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiClient{client: client, defaults: defaults}, nil
}

func (c *geminiClient) model(req Request) *genai.GenerativeModel {
	model := c.client.GenerativeModel(req.Model)
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	model.SetTemperature(float32(req.Temperature))
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	return model
}

func flattenParts(resp *genai.GenerateContentResponse, b *strings.Builder) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (Response, error) {
	req = c.defaults.resolve(req)
	ctx, cancel := c.defaults.callContext(ctx)
	defer cancel()

	resp, err := c.model(req).GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return Response{}, fmt.Errorf("gemini completion: %w", err)
	}

	var text strings.Builder
	flattenParts(resp, &text)

	out := Response{Text: text.String(), Model: req.Model}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func (c *geminiClient) Stream(ctx context.Context, req Request, fn func(Chunk) error) error {
	req = c.defaults.resolve(req)
	ctx, cancel := c.defaults.callContext(ctx)
	defer cancel()

	iter := c.model(req).GenerateContentStream(ctx, genai.Text(req.Prompt))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}

		var text strings.Builder
		flattenParts(resp, &text)
		if text.Len() == 0 {
			continue
		}
		if err := fn(Chunk{Content: text.String()}); err != nil {
			return err
		}
	}
}
