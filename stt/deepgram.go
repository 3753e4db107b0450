// acloudcenter/livekit-alien-curator-demo/stt/deepgram.go
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

const deepgramBaseURL = "https://api.deepgram.com/v1/listen"

// Deepgram transcribes Ogg/Opus utterances with the Deepgram REST API.
type Deepgram struct {
	apiKey     string
	model      string
	language   string
	baseURL    string
	httpClient *http.Client
}

// NewDeepgram creates a Deepgram client from the config.
func NewDeepgram(cfg *config.STTConfig) *Deepgram {
	return &Deepgram{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		language: cfg.Language,
		baseURL:  deepgramBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (d *Deepgram) Name() string { return "deepgram" }

// Close is a no-op; the client holds no persistent connection.
func (d *Deepgram) Close() {}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe posts one complete Ogg/Opus utterance and returns its transcript.
// Deepgram detects the container from the payload, so no encoding parameter
// is sent.
func (d *Deepgram) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	params := url.Values{}
	params.Set("model", d.model)
	params.Set("language", d.language)
	params.Set("smart_format", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"?"+params.Encode(), bytes.NewReader(audioData))
	if err != nil {
		return "", fmt.Errorf("failed to create deepgram request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/ogg")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read deepgram response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram returned status %d: %s", resp.StatusCode, string(body))
	}

	return parseDeepgramTranscript(body)
}

func parseDeepgramTranscript(body []byte) (string, error) {
	var parsed deepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode deepgram response: %w", err)
	}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}
