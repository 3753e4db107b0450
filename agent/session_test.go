package agent

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acloudcenter/livekit-alien-curator-demo/audio"
	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
	"github.com/acloudcenter/livekit-alien-curator-demo/log"
	"github.com/acloudcenter/livekit-alien-curator-demo/persona"
)

type fakeModel struct {
	reply string
	mu    sync.Mutex
	calls [][]interfaces.ChatMessage
}

func (f *fakeModel) Stream(ctx context.Context, messages []interfaces.ChatMessage, chunks chan<- string) (string, error) {
	defer close(chunks)
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()

	// Emit the reply in small deltas like a live completion stream.
	for _, word := range strings.SplitAfter(f.reply, " ") {
		select {
		case chunks <- word:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, nil
}

func (f *fakeModel) Name() string { return "fake-model" }

type fakeTTS struct{}

func (f *fakeTTS) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(text)), nil
}

func (f *fakeTTS) Name() string { return "fake-tts" }

type fakePlayer struct {
	mu     sync.Mutex
	spoken []string
	block  bool
}

func (f *fakePlayer) Play(ctx context.Context, r io.Reader, stop <-chan struct{}) error {
	text, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.spoken = append(f.spoken, string(text))
	block := f.block
	f.mu.Unlock()

	if block {
		select {
		case <-ctx.Done():
			return audio.ErrInterrupted
		case <-stop:
			return audio.ErrInterrupted
		}
	}
	return nil
}

func (f *fakePlayer) playedText() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

func newTestSession(model *fakeModel, player *fakePlayer) *Session {
	cfg := config.Default()
	return NewSession(cfg, persona.Default(), model, &fakeTTS{}, player, nil, log.NewLogger(io.Discard))
}

func waitForState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached state %s, stuck in %s", want, s.State())
}

func TestSessionGreeting(t *testing.T) {
	player := &fakePlayer{}
	s := newTestSession(&fakeModel{}, player)
	defer s.Close()

	require.NoError(t, s.Start())

	spoken := player.playedText()
	require.Len(t, spoken, 1)
	assert.Contains(t, spoken[0], "<speak>Weyland curator online.")
	assert.Equal(t, StateListening, s.State())
}

func TestSessionTurn(t *testing.T) {
	model := &fakeModel{reply: "The cranium was manufactured in 2093. It holds 120 trillion synthetic synapses."}
	player := &fakePlayer{}
	s := newTestSession(model, player)
	defer s.Close()

	s.HandleTranscript("visitor-1", "tell me about the skull")
	waitForState(t, s, StateListening)

	spoken := player.playedText()
	require.Len(t, spoken, 2)
	assert.Equal(t, "The cranium was manufactured in 2093.", spoken[0])
	assert.Equal(t, "It holds 120 trillion synthetic synapses.", spoken[1])

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, interfaces.ChatMessage{Role: "user", Content: "tell me about the skull"}, history[0])
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, model.reply, history[1].Content)

	// The model never sees a system message; the client prepends it.
	require.Len(t, model.calls, 1)
	assert.Equal(t, "user", model.calls[0][0].Role)
}

func TestSessionBargeIn(t *testing.T) {
	model := &fakeModel{reply: "MOTHER represents an attempt at an infallible corporate overseer for deep space."}
	player := &fakePlayer{block: true}
	s := newTestSession(model, player)
	defer s.Close()

	s.HandleTranscript("visitor-1", "tell me about mother")
	waitForState(t, s, StateSpeaking)

	// A new utterance lands while the curator is mid-sentence.
	player.mu.Lock()
	player.block = false
	player.mu.Unlock()
	s.HandleTranscript("visitor-1", "wait, what about the apollo computer")
	waitForState(t, s, StateListening)

	history := s.History()
	assert.Equal(t, "wait, what about the apollo computer", history[len(history)-2].Content)
}

func TestSessionConcurrentTranscripts(t *testing.T) {
	model := &fakeModel{reply: "Rope memory wove every instruction by hand."}
	player := &fakePlayer{}
	s := newTestSession(model, player)
	defer s.Close()

	// The transcription pool runs several workers, so transcripts can land
	// on the session from more than one goroutine at once.
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				s.HandleTranscript("visitor-1", "who wrote the guidance software")
			}
		}(w)
	}
	wg.Wait()
	waitForState(t, s, StateListening)

	for _, msg := range s.History() {
		assert.Contains(t, []string{"user", "assistant"}, msg.Role)
	}
}

func TestSessionHistoryTrimmed(t *testing.T) {
	model := &fakeModel{reply: "A short answer for the archives today."}
	player := &fakePlayer{}
	s := newTestSession(model, player)
	s.cfg.LLM.MaxHistory = 4
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.HandleTranscript("visitor-1", "another question")
		waitForState(t, s, StateListening)
	}

	assert.LessOrEqual(t, len(s.History()), 4)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "listening", StateListening.String())
	assert.Equal(t, "thinking", StateThinking.String())
	assert.Equal(t, "speaking", StateSpeaking.String())
}
