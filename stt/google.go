// acloudcenter/livekit-alien-curator-demo/stt/google.go
package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

// Google transcribes Ogg/Opus utterances with Google Cloud Speech.
type Google struct {
	speechClient *speech.Client
	language     string
}

// NewGoogle creates a Google Cloud Speech client.
// It relies on Application Default Credentials for authentication.
func NewGoogle(cfg *config.STTConfig) (*Google, error) {
	ctx := context.Background()
	speechClient, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &Google{
		speechClient: speechClient,
		language:     cfg.Language,
	}, nil
}

func (g *Google) Name() string { return "google" }

// Close cleans up the speech client connection.
func (g *Google) Close() {
	if g.speechClient != nil {
		g.speechClient.Close()
	}
}

// Transcribe sends one complete Ogg/Opus utterance and returns its transcript.
func (g *Google) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	resp, err := g.speechClient.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_OGG_OPUS,
			SampleRateHertz: 48000,
			LanguageCode:    g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize request failed: %w", err)
	}

	transcript := ""
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript
		}
	}
	return transcript, nil
}
