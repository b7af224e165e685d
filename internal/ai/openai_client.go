package ai

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/homelead-widget/internal/suggest"
)

type OpenAIClient struct {
	client  *openai.Client
	model   string
	prompts PromptSet
}

func NewOpenAIClient(apiKey, model string, prompts PromptSet) *OpenAIClient {
	return NewOpenAIClientWithConfig(openai.DefaultConfig(apiKey), model, prompts)
}

func NewOpenAIClientWithConfig(cfg openai.ClientConfig, model string, prompts PromptSet) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		prompts: prompts,
	}
}

type openAIAnswer struct {
	Answer      string   `json:"answer"`
	Suggestions []string `json:"suggestions"`
}

// GetReply asks the model for a JSON answer and turns it into widget text with
// a suggestion block.
func (c *OpenAIClient) GetReply(ctx context.Context, history []Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.prompts.System,
	})
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Text,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: jsonGuard,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.prompts.Style.Temperature,
		MaxTokens:   c.prompts.Style.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		log.Println("[ai] OpenAI error:", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	raw := resp.Choices[0].Message.Content
	log.Printf("[ai] raw response: %s", short(raw))

	return renderAnswer(raw), nil
}

// renderAnswer keeps malformed output as plain text rather than dropping it.
func renderAnswer(raw string) string {
	var a openAIAnswer
	if err := json.Unmarshal([]byte(raw), &a); err != nil || strings.TrimSpace(a.Answer) == "" {
		log.Printf("[ai] answer is not the expected JSON, using raw text")
		return suggest.Neutralize(strings.TrimSpace(raw))
	}

	answer := suggest.Neutralize(strings.TrimSpace(a.Answer))
	questions := lo.Filter(a.Suggestions, func(q string, _ int) bool {
		return suggest.Valid(q)
	})

	text, err := suggest.Encode(answer, questions)
	if err != nil {
		return answer
	}
	return text
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
