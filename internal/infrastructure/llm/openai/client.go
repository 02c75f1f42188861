// Package openai provides a PersonExtractor implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
)

const extractionPrompt = `Ти розбираєш записи про засновників і кінцевих бенефіціарних власників з Єдиного державного реєстру України.

Кожен запис є вільним текстом. Визнач:
- names: повні імена фізичних осіб або назви юридичних осіб, які згадуються як власники
- addresses: адреси, у тому порядку, в якому вони йдуть у тексті
- countries: країни реєстрації або проживання, іменем країни українською мовою в нижньому регістрі
- has_reference: true, якщо запис посилається на іншу юридичну особу (наприклад, через код ЄДРПОУ або назву компанії), а не називає людину

Якщо в записі сказано, що бенефіціара немає або його не встановлено, поверни порожній список names.

Поверни ЛИШЕ валідний JSON-об'єкт, без іншого тексту.

Приклад:
Вхід: "Іваненко Петро Миколайович, Україна, 01001, м. Київ, вул. Хрещатик, 1"
Вихід: {"names": ["Іваненко Петро Миколайович"], "addresses": ["01001, м. Київ, вул. Хрещатик, 1"], "countries": ["україна"], "has_reference": false}`

// Client implements ports.PersonExtractor using OpenAI chat completions.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI extraction client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := openai.GPT4oMini
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Extract recovers names, addresses and countries from a raw person record.
func (c *Client) Extract(ctx context.Context, raw string) (*ports.ExtractedPerson, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: raw,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	return parseExtraction(resp.Choices[0].Message.Content)
}

func parseExtraction(content string) (*ports.ExtractedPerson, error) {
	content = cleanJSONResponse(content)

	var result ports.ExtractedPerson
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parsing extraction JSON: %w (response: %s)", err, content)
	}

	result.Names = tidy(result.Names, false)
	result.Addresses = tidy(result.Addresses, false)
	result.Countries = tidy(result.Countries, true)
	return &result, nil
}

// tidy trims values and drops blanks and repeats, keeping first-seen order.
func tidy(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
