// acloudcenter/livekit-alien-curator-demo/interfaces/tts.go
package interfaces

import (
	"context"
	"io"
)

// TextToSpeech is the interface for the speech synthesis module.
// Synthesize returns a streaming Ogg/Opus body; the caller must close it.
// Text may contain SSML markup when the provider supports it.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
	Name() string
}
