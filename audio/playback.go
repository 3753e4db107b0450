// acloudcenter/livekit-alien-curator-demo/audio/playback.go
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
)

// ErrInterrupted is returned when playback is cut short by a stop signal.
var ErrInterrupted = errors.New("playback interrupted")

// SampleWriter is the published track surface playback writes into.
type SampleWriter interface {
	WriteSample(sample media.Sample) error
}

// Player paces Ogg/Opus audio onto a room track in real time.
type Player struct {
	track SampleWriter
}

func NewPlayer(track SampleWriter) *Player {
	return &Player{track: track}
}

// Play reads Ogg pages from r and writes them to the track at their natural
// rate, using the granule position delta for timing. It stops early when ctx
// is cancelled or stop is closed, returning ErrInterrupted.
func (p *Player) Play(ctx context.Context, r io.Reader, stop <-chan struct{}) error {
	ogg, _, err := oggreader.NewWith(r)
	if err != nil {
		return fmt.Errorf("failed to open ogg stream: %w", err)
	}

	var lastGranule uint64
	for {
		payload, pageHeader, err := ogg.ParseNextPage()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse ogg page: %w", err)
		}
		if len(payload) == 0 {
			continue
		}

		sampleCount := pageHeader.GranulePosition - lastGranule
		lastGranule = pageHeader.GranulePosition
		duration := time.Duration(sampleCount) * time.Second / sampleRate
		if duration <= 0 {
			duration = frameDuration
		}

		if err := p.track.WriteSample(media.Sample{Data: payload, Duration: duration}); err != nil {
			return fmt.Errorf("failed to write audio sample: %w", err)
		}

		// Pace the next page so the track plays in real time.
		select {
		case <-ctx.Done():
			return ErrInterrupted
		case <-stop:
			return ErrInterrupted
		case <-time.After(duration):
		}
	}
}
