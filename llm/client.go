// acloudcenter/livekit-alien-curator-demo/llm/client.go
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
	"github.com/acloudcenter/livekit-alien-curator-demo/utils"
)

// Client streams chat completions from an OpenAI-compatible endpoint.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	model        string
	temperature  float64
	systemPrompt string
}

// NewClient builds a chat client with the given system prompt baked in.
func NewClient(cfg *config.LLMConfig, systemPrompt string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 120 * time.Second},
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		systemPrompt: systemPrompt,
	}
}

func (c *Client) Name() string { return c.model }

type chatRequest struct {
	Model       string                   `json:"model"`
	Messages    []interfaces.ChatMessage `json:"messages"`
	Temperature float64                  `json:"temperature"`
	Stream      bool                     `json:"stream"`
}

type chatStreamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Stream sends the conversation prefixed with the system prompt and emits
// completion deltas on chunks as they arrive. It returns the assembled reply.
// The chunks channel is closed before returning.
func (c *Client) Stream(ctx context.Context, messages []interfaces.ChatMessage, chunks chan<- string) (string, error) {
	defer close(chunks)

	payload := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Stream:      true,
		Messages:    append([]interfaces.ChatMessage{{Role: "system", Content: c.systemPrompt}}, messages...),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var full strings.Builder
	firstToken := true
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var streamResp chatStreamResponse
		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			continue
		}
		if len(streamResp.Choices) == 0 {
			continue
		}
		delta := streamResp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		if firstToken {
			utils.RecordLLMFirstToken(time.Since(start).Milliseconds())
			firstToken = false
		}
		full.WriteString(delta)

		select {
		case chunks <- delta:
		case <-ctx.Done():
			return full.String(), ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("error reading chat stream: %w", err)
	}

	return full.String(), nil
}
