package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/adamstosho/RugRadar/internal/models"
)

const (
	DefaultModel   = openai.GPT4oMini
	DeepSeekURL    = "https://api.deepseek.com/v1"
	DeepSeekModel  = "deepseek-chat"
	maxPromptItems = 5
)

// OpenAINarrator implements the Narrator interface against any OpenAI compatible endpoint
type OpenAINarrator struct {
	client *openai.Client
	model  string
}

// NewOpenAINarrator creates a narrator. An empty baseURL means api.openai.com.
func NewOpenAINarrator(apiKey, model, baseURL string) *OpenAINarrator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
		if strings.Contains(baseURL, "deepseek") {
			model = DeepSeekModel
		}
	}

	return &OpenAINarrator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Summarize implements the Narrator interface
func (a *OpenAINarrator) Summarize(ctx context.Context, analysis *models.TokenAnalysis) (string, error) {
	if analysis == nil {
		return "", errors.New("no analysis provided")
	}

	resp, err := a.createChatCompletion(ctx, buildPrompt(analysis))
	if err != nil {
		return "", fmt.Errorf("failed to summarize analysis: %w", err)
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(stripFence(resp)), &result); err != nil {
		return "", fmt.Errorf("failed to parse summary: %w", err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return "", errors.New("empty summary")
	}

	return strings.TrimSpace(result.Summary), nil
}

func buildPrompt(a *models.TokenAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Token: %s (%s)\n", a.Metadata.Name, a.Metadata.Symbol)
	fmt.Fprintf(&b, "Contract: %s on %s\n", a.Metadata.Address, a.Chain)
	fmt.Fprintf(&b, "Risk score: %d/100\n", a.Assessment.Score)

	b.WriteString("Risk factors:\n")
	for _, f := range a.Assessment.RiskFactors {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	fmt.Fprintf(&b, "Total transfers: %s\n", metric(a.Stats.TotalTransfers))
	fmt.Fprintf(&b, "Holders: %s\n", metric(a.Stats.TotalHolders))
	fmt.Fprintf(&b, "24h volume (USD): %s\n", metric(a.Stats.Volume24h))
	fmt.Fprintf(&b, "Liquidity (USD): %s\n", metric(a.Stats.Liquidity))
	if a.Price != nil {
		fmt.Fprintf(&b, "Price: $%g (24h change %.2f%%)\n", a.Price.USDPrice, a.Price.PriceChange24h)
	}

	b.WriteString("Largest holders in the sample:\n")
	for i, h := range a.Holders {
		if i == maxPromptItems {
			break
		}
		fmt.Fprintf(&b, "- %s holds %.2f%%\n", h.Address, h.Share)
	}

	b.WriteString(`
Explain this assessment to a retail investor in at most four sentences.
Only use the facts above. Say which figures are estimates. Do not give financial advice.

Output JSON:
{
    "summary": string
}`)

	return b.String()
}

func metric(m models.Metric) string {
	if !m.Available() {
		return "unavailable"
	}
	return fmt.Sprintf("%g (%s)", m.Value, m.Source)
}

// stripFence removes a markdown code fence some models wrap JSON in
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// createChatCompletion is a helper function to make chat completion calls
func (a *OpenAINarrator) createChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a careful on-chain risk analyst. Always answer in JSON.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.2, // 低温度，输出更稳定
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
