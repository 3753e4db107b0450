// acloudcenter/livekit-alien-curator-demo/stt/deepgram_live.go
package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

const (
	deepgramLiveURL = "wss://api.deepgram.com/v1/listen"
	// Audio is fed to the socket in slices this size.
	liveChunkBytes = 8192
)

// DeepgramLive transcribes utterances over Deepgram's streaming websocket.
// The whole utterance is pushed at once and finals are collected until the
// server closes the stream, which shaves the HTTP round-trip per utterance.
type DeepgramLive struct {
	apiKey   string
	model    string
	language string
	wsURL    string
	dialer   *websocket.Dialer
}

// NewDeepgramLive creates a streaming Deepgram client from the config.
func NewDeepgramLive(cfg *config.STTConfig) *DeepgramLive {
	return &DeepgramLive{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		language: cfg.Language,
		wsURL:    deepgramLiveURL,
		dialer:   websocket.DefaultDialer,
	}
}

func (d *DeepgramLive) Name() string { return "deepgram-live" }

// Close is a no-op; each utterance uses its own socket.
func (d *DeepgramLive) Close() {}

type liveResult struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// Transcribe streams one Ogg/Opus utterance through the live endpoint and
// returns the concatenated final transcript.
func (d *DeepgramLive) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	params := url.Values{}
	params.Set("model", d.model)
	params.Set("language", d.language)
	params.Set("smart_format", "true")

	header := http.Header{}
	header.Set("Authorization", "Token "+d.apiKey)

	conn, resp, err := d.dialer.DialContext(ctx, d.wsURL+"?"+params.Encode(), header)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("deepgram live handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return "", fmt.Errorf("deepgram live dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	for offset := 0; offset < len(audioData); offset += liveChunkBytes {
		end := offset + liveChunkBytes
		if end > len(audioData) {
			end = len(audioData)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, audioData[offset:end]); err != nil {
			return "", fmt.Errorf("failed to send audio to deepgram: %w", err)
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		return "", fmt.Errorf("failed to close deepgram stream: %w", err)
	}

	var finals []string
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			return "", fmt.Errorf("error reading deepgram stream: %w", err)
		}

		var result liveResult
		if err := json.Unmarshal(message, &result); err != nil {
			continue
		}
		if result.Type != "Results" || !result.IsFinal {
			continue
		}
		if len(result.Channel.Alternatives) == 0 {
			continue
		}
		if transcript := strings.TrimSpace(result.Channel.Alternatives[0].Transcript); transcript != "" {
			finals = append(finals, transcript)
		}
	}

	return strings.Join(finals, " "), nil
}
