// Package narrative drafts a short plain-language summary of the comparison
// results through an OpenAI-compatible chat endpoint. It is strictly
// additive: no computation ever depends on its output, and callers treat
// failures as warnings.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/readability"
	"github.com/healthtextlab/medread/internal/stats"
)

// Client is the minimal chat surface, so any OpenAI-compatible backend or a
// test stub can stand in.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient builds a client for an OpenAI-compatible endpoint. An
// empty baseURL keeps the platform default; an empty key suits local
// backends that skip auth.
func NewOpenAIClient(baseURL, apiKey string) Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

const systemPrompt = "You are a health communication researcher. Write a short, " +
	"plain-language summary of the readability comparison described by the user. " +
	"Keep it between 100 and 180 words, neutral in tone, and do not invent numbers " +
	"that are not in the input."

// Summarizer turns a finished analysis into prose. Only aggregate figures
// reach the model, never page text.
type Summarizer struct {
	Client Client
	Model  string

	// MaxTokens bounds the completion; zero means DefaultMaxTokens.
	MaxTokens int
}

// DefaultMaxTokens caps the narrative completion length.
const DefaultMaxTokens = 400

// Summarize requests the narrative. It returns the trimmed completion text
// or an error the caller downgrades to a warning.
func (s *Summarizer) Summarize(ctx context.Context, ds *dataset.Dataset, an *stats.Analysis) (string, error) {
	if s.Client == nil {
		return "", errors.New("narrative: no client configured")
	}
	if s.Model == "" {
		return "", errors.New("narrative: no model configured")
	}
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.Model,
		Temperature: 0.3,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: Digest(ds, an)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrative: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("narrative: empty completion")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("narrative: blank completion")
	}
	return text, nil
}

// Digest lays out the aggregate findings as the user prompt. Exported so the
// dry-run mode can show exactly what would be sent.
func Digest(ds *dataset.Dataset, an *stats.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search query: %s\n", ds.Query)
	fmt.Fprintf(&b, "Documents analyzed: %d, with extracted text: %d\n",
		ds.Len(), ds.CountStatus(dataset.StatusSuccess))
	fmt.Fprintf(&b, "Institutional sources: %d, private sources: %d\n",
		ds.CountSource(classify.Institutional), ds.CountSource(classify.Private))
	if d, ok := an.Overall["mean_readability"]; ok {
		fmt.Fprintf(&b, "Overall mean grade level: %.2f (%s)\n", d.Mean, readability.Category(d.Mean))
	}
	fmt.Fprintf(&b, "Significance level: %.2f\n", an.Alpha)
	for _, m := range dataset.MetricColumns {
		c, ok := an.Comparisons[m]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s, p=%.4f, institutional mean %.2f vs private mean %.2f. %s\n",
			m, c.TestUsed, c.PValue, c.Group1Mean, c.Group2Mean, c.Interpretation())
	}
	return b.String()
}
