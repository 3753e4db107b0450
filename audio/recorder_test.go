package audio

import (
	"testing"
	"time"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

func testVADConfig() *config.VADConfig {
	return &config.VADConfig{
		SilenceHangoverMs: 600,
		MinUtteranceMs:    300,
		MaxUtteranceSec:   30,
	}
}

func opusPacket(seq uint16) *rtp.Packet {
	return &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    111,
			SequenceNumber: seq,
			Timestamp:      uint32(seq) * 960,
			SSRC:           42,
		},
		// TOC byte plus minimal frame data, enough for the ogg muxer.
		Payload: []byte{0x78, 0x00, 0x01, 0x02, 0x03},
	}
}

func feedPackets(t *testing.T, r *Recorder, participant string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		require.NoError(t, r.ProcessPacket(participant, opusPacket(uint16(i))))
	}
}

func TestRecorderSegmentsUtterance(t *testing.T) {
	var captured []Utterance
	r := NewRecorder(testVADConfig(), func(u Utterance) {
		captured = append(captured, u)
	})

	feedPackets(t, r, "visitor-1", 25)
	assert.Equal(t, 1, r.ActiveStreams())

	// Nothing flushes while the hangover window is still open.
	r.Scan(time.Now())
	assert.Empty(t, captured)
	assert.Equal(t, 1, r.ActiveStreams())

	r.Scan(time.Now().Add(700 * time.Millisecond))
	require.Len(t, captured, 1)
	assert.Equal(t, "visitor-1", captured[0].Participant)
	assert.Equal(t, 500*time.Millisecond, captured[0].Duration)
	assert.Equal(t, "OggS", string(captured[0].Audio[:4]))
	assert.Equal(t, 0, r.ActiveStreams())
}

func TestRecorderDropsShortNoise(t *testing.T) {
	var captured []Utterance
	r := NewRecorder(testVADConfig(), func(u Utterance) {
		captured = append(captured, u)
	})

	// 5 packets is 100ms, below the 300ms minimum.
	feedPackets(t, r, "visitor-1", 5)
	r.Scan(time.Now().Add(time.Second))

	assert.Empty(t, captured)
	assert.Equal(t, 0, r.ActiveStreams())
}

func TestRecorderMaxUtteranceFlush(t *testing.T) {
	cfg := testVADConfig()
	cfg.SilenceHangoverMs = 2000
	cfg.MaxUtteranceSec = 1

	var captured []Utterance
	r := NewRecorder(cfg, func(u Utterance) {
		captured = append(captured, u)
	})

	feedPackets(t, r, "visitor-1", 25)

	// Still within the hangover, but past the maximum utterance length.
	r.Scan(time.Now().Add(1100 * time.Millisecond))
	assert.Len(t, captured, 1)
}

func TestRecorderTracksParticipantsSeparately(t *testing.T) {
	var captured []Utterance
	r := NewRecorder(testVADConfig(), func(u Utterance) {
		captured = append(captured, u)
	})

	feedPackets(t, r, "visitor-1", 25)
	feedPackets(t, r, "visitor-2", 25)
	assert.Equal(t, 2, r.ActiveStreams())

	r.Scan(time.Now().Add(700 * time.Millisecond))
	assert.Len(t, captured, 2)
}

func TestRecorderCloseFlushes(t *testing.T) {
	var captured []Utterance
	r := NewRecorder(testVADConfig(), func(u Utterance) {
		captured = append(captured, u)
	})

	feedPackets(t, r, "visitor-1", 25)
	r.Close()

	assert.Len(t, captured, 1)
}

func TestSpeaking(t *testing.T) {
	r := NewRecorder(testVADConfig(), nil)

	assert.False(t, r.Speaking("visitor-1"))
	feedPackets(t, r, "visitor-1", 1)
	assert.True(t, r.Speaking("visitor-1"))
}
