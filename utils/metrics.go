package utils

import "sync/atomic"

// Metrics holds counters for the voice session
var (
	utterancesCaptured  int64
	transcriptsProduced int64
	turnsCompleted      int64
	interruptions       int64
	roomReconnects      int64
	lastSTTLatencyMs    int64
	lastLLMFirstTokenMs int64
	lastTTSFirstAudioMs int64
	lastTurnDurationMs  int64
)

// IncrementUtterancesCaptured atomically increments the captured utterance counter
func IncrementUtterancesCaptured() {
	atomic.AddInt64(&utterancesCaptured, 1)
}

// IncrementTranscriptsProduced atomically increments the transcript counter
func IncrementTranscriptsProduced() {
	atomic.AddInt64(&transcriptsProduced, 1)
}

// IncrementTurnsCompleted atomically increments the completed turn counter
func IncrementTurnsCompleted() {
	atomic.AddInt64(&turnsCompleted, 1)
}

// IncrementInterruptions atomically increments the barge-in counter
func IncrementInterruptions() {
	atomic.AddInt64(&interruptions, 1)
}

// IncrementReconnects atomically increments the room reconnection counter
func IncrementReconnects() {
	atomic.AddInt64(&roomReconnects, 1)
}

// RecordSTTLatency stores the most recent transcription latency
func RecordSTTLatency(ms int64) {
	atomic.StoreInt64(&lastSTTLatencyMs, ms)
}

// RecordLLMFirstToken stores the most recent time-to-first-token
func RecordLLMFirstToken(ms int64) {
	atomic.StoreInt64(&lastLLMFirstTokenMs, ms)
}

// RecordTTSFirstAudio stores the most recent time-to-first-audio
func RecordTTSFirstAudio(ms int64) {
	atomic.StoreInt64(&lastTTSFirstAudioMs, ms)
}

// RecordTurnDuration stores the most recent full turn duration
func RecordTurnDuration(ms int64) {
	atomic.StoreInt64(&lastTurnDurationMs, ms)
}

// GetMetrics returns the current metrics as a map
func GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"utterances_captured":     atomic.LoadInt64(&utterancesCaptured),
		"transcripts_produced":    atomic.LoadInt64(&transcriptsProduced),
		"turns_completed":         atomic.LoadInt64(&turnsCompleted),
		"interruptions":           atomic.LoadInt64(&interruptions),
		"room_reconnects":         atomic.LoadInt64(&roomReconnects),
		"last_stt_latency_ms":     atomic.LoadInt64(&lastSTTLatencyMs),
		"last_llm_first_token_ms": atomic.LoadInt64(&lastLLMFirstTokenMs),
		"last_tts_first_audio_ms": atomic.LoadInt64(&lastTTSFirstAudioMs),
		"last_turn_duration_ms":   atomic.LoadInt64(&lastTurnDurationMs),
	}
}
