// acloudcenter/livekit-alien-curator-demo/audio/recorder.go
package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/utils"
)

const (
	sampleRate = 48000
	channels   = 2
	scanEvery  = 100 * time.Millisecond
	// Opus frame duration on the wire.
	frameDuration = 20 * time.Millisecond
)

// Utterance is one complete stretch of speech from a participant, buffered as
// an Ogg/Opus blob ready for transcription.
type Utterance struct {
	Participant string
	Audio       []byte
	Duration    time.Duration
	CapturedAt  time.Time
}

// participantStream tracks an in-progress utterance for one participant.
type participantStream struct {
	participant string
	buf         bytes.Buffer
	ogg         *oggwriter.OggWriter
	started     time.Time
	lastPacket  time.Time
	packets     int
}

// Recorder buffers incoming Opus packets per participant and segments them
// into utterances by packet flow: speech begins with the first packet after
// idle and ends once the hangover window passes with no packets.
type Recorder struct {
	cfg         *config.VADConfig
	mu          sync.Mutex
	streams     map[string]*participantStream
	onUtterance func(Utterance)
	done        chan struct{}
	closeOnce   sync.Once
}

// NewRecorder creates a recorder that invokes onUtterance for every segmented
// utterance. Callbacks fire on the recorder's scan goroutine.
func NewRecorder(cfg *config.VADConfig, onUtterance func(Utterance)) *Recorder {
	return &Recorder{
		cfg:         cfg,
		streams:     make(map[string]*participantStream),
		onUtterance: onUtterance,
		done:        make(chan struct{}),
	}
}

// Run scans for finished utterances until Close is called.
func (r *Recorder) Run() {
	ticker := time.NewTicker(scanEvery)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case now := <-ticker.C:
			r.Scan(now)
		}
	}
}

// Close stops the scan loop and flushes every in-progress utterance.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() { close(r.done) })
	r.flushAll()
}

// ProcessPacket appends one RTP packet to the participant's current utterance,
// opening a new one if the participant was idle.
func (r *Recorder) ProcessPacket(participant string, pkt *rtp.Packet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, ok := r.streams[participant]
	if !ok {
		var err error
		stream, err = r.newStream(participant)
		if err != nil {
			return err
		}
		r.streams[participant] = stream
	}

	if err := stream.ogg.WriteRTP(pkt); err != nil {
		return fmt.Errorf("failed to buffer opus packet: %w", err)
	}
	stream.lastPacket = time.Now()
	stream.packets++
	return nil
}

func (r *Recorder) newStream(participant string) (*participantStream, error) {
	stream := &participantStream{
		participant: participant,
		started:     time.Now(),
	}
	ogg, err := oggwriter.NewWith(&stream.buf, sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create ogg buffer: %w", err)
	}
	stream.ogg = ogg
	return stream, nil
}

// Scan flushes every stream whose hangover window has elapsed or whose
// utterance has hit the maximum length.
func (r *Recorder) Scan(now time.Time) {
	hangover := time.Duration(r.cfg.SilenceHangoverMs) * time.Millisecond
	maxLen := time.Duration(r.cfg.MaxUtteranceSec) * time.Second

	r.mu.Lock()
	var finished []*participantStream
	for participant, stream := range r.streams {
		silentFor := now.Sub(stream.lastPacket)
		runningFor := now.Sub(stream.started)
		if silentFor >= hangover || runningFor >= maxLen {
			finished = append(finished, stream)
			delete(r.streams, participant)
		}
	}
	r.mu.Unlock()

	for _, stream := range finished {
		r.emit(stream)
	}
}

func (r *Recorder) flushAll() {
	r.mu.Lock()
	var finished []*participantStream
	for participant, stream := range r.streams {
		finished = append(finished, stream)
		delete(r.streams, participant)
	}
	r.mu.Unlock()

	for _, stream := range finished {
		r.emit(stream)
	}
}

// emit closes the ogg buffer and hands the utterance off, dropping segments
// shorter than the configured minimum.
func (r *Recorder) emit(stream *participantStream) {
	_ = stream.ogg.Close()

	duration := time.Duration(stream.packets) * frameDuration
	if duration < time.Duration(r.cfg.MinUtteranceMs)*time.Millisecond {
		return
	}

	utils.IncrementUtterancesCaptured()
	if r.onUtterance != nil {
		r.onUtterance(Utterance{
			Participant: stream.participant,
			Audio:       append([]byte(nil), stream.buf.Bytes()...),
			Duration:    duration,
			CapturedAt:  stream.started,
		})
	}
}

// ActiveStreams returns how many participants are mid-utterance.
func (r *Recorder) ActiveStreams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

// Speaking reports whether the participant has sent audio within the hangover
// window. The packet handler uses it to detect barge-in while the curator is
// talking.
func (r *Recorder) Speaking(participant string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	stream, ok := r.streams[participant]
	if !ok {
		return false
	}
	return time.Since(stream.lastPacket) < time.Duration(r.cfg.SilenceHangoverMs)*time.Millisecond
}
