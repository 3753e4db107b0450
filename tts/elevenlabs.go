// acloudcenter/livekit-alien-curator-demo/tts/elevenlabs.go
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io"

// ElevenLabs synthesizes speech as streamed Ogg/Opus at 48 kHz, which plays
// straight into an Opus room track without transcoding.
type ElevenLabs struct {
	apiKey     string
	voiceID    string
	model      string
	ssml       bool
	baseURL    string
	httpClient *http.Client
}

// NewElevenLabs creates an ElevenLabs client from the config.
func NewElevenLabs(cfg *config.TTSConfig) *ElevenLabs {
	return &ElevenLabs{
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		model:   cfg.Model,
		ssml:    cfg.SSML,
		baseURL: elevenLabsBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

type synthesizeRequest struct {
	Text          string `json:"text"`
	ModelID       string `json:"model_id"`
	EnableSSML    bool   `json:"enable_ssml_parsing,omitempty"`
	Normalization string `json:"apply_text_normalization,omitempty"`
}

// Synthesize streams the spoken text back as an Ogg/Opus body. The caller must
// close the returned reader.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	params := url.Values{}
	params.Set("output_format", "opus_48000_64")

	ssml := e.ssml && IsSSML(text)
	payload := synthesizeRequest{
		Text:       text,
		ModelID:    e.model,
		EnableSSML: ssml,
	}
	if !ssml {
		// Normalization rewrites numerals and units for speech; it is not
		// compatible with SSML input.
		payload.Normalization = "auto"
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesize request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream?%s", e.baseURL, e.voiceID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesize request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/ogg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesize request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return resp.Body, nil
}

// IsSSML reports whether the text is an SSML document rather than plain prose.
func IsSSML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<speak>") && strings.HasSuffix(trimmed, "</speak>")
}
