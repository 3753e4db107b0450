package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	before := GetMetrics()

	IncrementUtterancesCaptured()
	IncrementTranscriptsProduced()
	IncrementTurnsCompleted()
	IncrementInterruptions()
	IncrementReconnects()
	RecordSTTLatency(120)
	RecordLLMFirstToken(340)
	RecordTTSFirstAudio(95)
	RecordTurnDuration(2100)

	after := GetMetrics()

	assert.Equal(t, before["utterances_captured"].(int64)+1, after["utterances_captured"])
	assert.Equal(t, before["transcripts_produced"].(int64)+1, after["transcripts_produced"])
	assert.Equal(t, before["turns_completed"].(int64)+1, after["turns_completed"])
	assert.Equal(t, before["interruptions"].(int64)+1, after["interruptions"])
	assert.Equal(t, before["room_reconnects"].(int64)+1, after["room_reconnects"])
	assert.Equal(t, int64(120), after["last_stt_latency_ms"])
	assert.Equal(t, int64(340), after["last_llm_first_token_ms"])
	assert.Equal(t, int64(95), after["last_tts_first_audio_ms"])
	assert.Equal(t, int64(2100), after["last_turn_duration_ms"])
}
