package openai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client fala com qualquer endpoint compatível com /chat/completions.
type Client struct {
	http  *resty.Client
	model string
}

func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(apiKey).
			SetTimeout(30 * time.Second),
		model: model,
	}
}

// GenerateReply devolve "" quando o modelo não produz conteúdo.
func (c *Client) GenerateReply(ctx context.Context, systemPrompt, userText string) (string, error) {
	var (
		result  chatResponse
		errBody apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userText},
			},
			Temperature: 0.7,
			MaxTokens:   300,
		}).
		SetResult(&result).
		SetError(&errBody).
		Post("/chat/completions")
	if err != nil {
		return "", err
	}

	if resp.IsError() {
		log.Printf("❌ OpenAI: status %d: %s", resp.StatusCode(), errBody.Error.Message)
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode(), errBody.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
