package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rmts-health/rmts/pkg/adapter"
	"google.golang.org/genai"
)

func TestGenerateText(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewGemini(ctx, projectID, "us-central1")
	gt.NoError(t, err)

	text, err := client.GenerateText(ctx, adapter.TextRequest{
		System:      "Answer in one short sentence without formatting.",
		Prompt:      "Describe a resting heart rate of 72 bpm.",
		MaxTokens:   200,
		Temperature: 0.2,
	})
	gt.NoError(t, err)
	gt.True(t, text != "")
	t.Log("response:", text)
}

func TestExtractGeminiText(t *testing.T) {
	t.Run("joins text parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking", Thought: true},
					{Text: "Heart rate "},
					{Text: "is steady."},
				}}},
			},
		}
		gt.Equal(t, adapter.ExtractGeminiText(resp), "Heart rate is steady.")
	})

	t.Run("empty response", func(t *testing.T) {
		gt.Equal(t, adapter.ExtractGeminiText(nil), "")
		gt.Equal(t, adapter.ExtractGeminiText(&genai.GenerateContentResponse{}), "")
	})
}
