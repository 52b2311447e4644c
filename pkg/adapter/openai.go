package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type openaiClient struct {
	completions *openai.ChatCompletionService
	model       string
}

// NewOpenAI creates an OpenAI chat completion client
func NewOpenAI(apiKey, model string) LLM {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)
	if model == "" {
		model = "gpt-4.1"
	}
	return &openaiClient{
		completions: &client.Chat.Completions,
		model:       model,
	}
}

func (c *openaiClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		MaxCompletionTokens: openai.Int(int64(req.MaxTokens)),
		Temperature:         openai.Float(float64(req.Temperature)),
	}

	completion, err := c.completions.New(ctx, params)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat completion", goerr.V("model", c.model))
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
