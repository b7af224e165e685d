package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AssistantClient forwards the conversation to an external assistant backend
// over HTTP. The backend replies with text already carrying its suggestion
// block.
type AssistantClient struct {
	url    string
	token  string
	client *http.Client
}

func NewAssistantClient(url, token string) *AssistantClient {
	return &AssistantClient{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type assistantRequest struct {
	Text    string    `json:"text"`
	History []Message `json:"history"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

func (c *AssistantClient) GetReply(ctx context.Context, history []Message) (string, error) {
	b, err := json.Marshal(assistantRequest{
		Text:    lastUserText(history),
		History: history,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.New(
			"assistant api error: " +
				resp.Status +
				" body=" + string(respBody),
		)
	}

	var out assistantResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode assistant reply: %w", err)
	}
	return out.Reply, nil
}
