package adapter

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/m-mizutani/goerr/v2"
)

// claudeClient implements LLM with the Anthropic Messages API
type claudeClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewClaude creates a new Claude API client
func NewClaude(apiKey, model string) LLM {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	return &claudeClient{
		client: &client,
		model:  anthropic.Model(model),
	}
}

func (c *claudeClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(req.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: param.NewOpt(float64(req.Temperature)),
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create message", goerr.V("model", c.model))
	}

	var texts []string
	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}
