// acloudcenter/livekit-alien-curator-demo/interfaces/stt.go
package interfaces

import "context"

// SpeechToText is the interface for the speech-to-text module.
// Implementations transcribe a complete Ogg/Opus utterance blob.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioData []byte) (string, error)
	Name() string
	Close()
}
