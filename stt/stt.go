// acloudcenter/livekit-alien-curator-demo/stt/stt.go
package stt

import (
	"fmt"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
)

// New returns the speech-to-text client named by the config provider.
func New(cfg *config.STTConfig) (interfaces.SpeechToText, error) {
	switch cfg.Provider {
	case "deepgram":
		return NewDeepgram(cfg), nil
	case "deepgram-live":
		return NewDeepgramLive(cfg), nil
	case "google":
		return NewGoogle(cfg)
	default:
		return nil, fmt.Errorf("unknown stt provider: %s", cfg.Provider)
	}
}
