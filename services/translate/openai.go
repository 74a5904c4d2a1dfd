package translatesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/takanag/nenga/core"
)

const openAIHost = "https://api.openai.com"

// openAITranslator asks a chat model for a translation. Slower and
// loosely formatted compared to DeepL; it only backs it up.
type openAITranslator struct {
	key   string
	model string
}

var _ core.Translator = (*openAITranslator)(nil)

func NewOpenAITranslator(key string) *openAITranslator {
	return &openAITranslator{key: key, model: "gpt-3.5-turbo"}
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	chatRequest struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
	}
	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
)

func (t *openAITranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: fmt.Sprintf(
					"Translate the user's text into %s. Reply with the translation only, no commentary.",
					targetLang,
				),
			},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding chat request")
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: openAIHost + "/v1/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + t.key,
			"Content-Type":  "application/json",
		},
		Body: payload,
	}

	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "calling OpenAI")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("OpenAI status %d: %s", res.StatusCode, res.Body)
	}

	var body chatResponse
	if err = json.Unmarshal([]byte(res.Body), &body); err != nil {
		return "", errors.Wrap(err, "decoding OpenAI response")
	}
	if len(body.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}
	return strings.TrimSpace(body.Choices[0].Message.Content), nil
}
