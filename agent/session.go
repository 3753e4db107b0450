// acloudcenter/livekit-alien-curator-demo/agent/session.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/acloudcenter/livekit-alien-curator-demo/audio"
	"github.com/acloudcenter/livekit-alien-curator-demo/cache"
	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
	"github.com/acloudcenter/livekit-alien-curator-demo/llm"
	"github.com/acloudcenter/livekit-alien-curator-demo/log"
	"github.com/acloudcenter/livekit-alien-curator-demo/persona"
	"github.com/acloudcenter/livekit-alien-curator-demo/utils"
)

// State is the session's position in the listen-think-speak loop.
type State int32

const (
	StateIdle State = iota
	StateListening
	StateThinking
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateThinking:
		return "thinking"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// speechPlayer paces synthesized audio onto the room track.
type speechPlayer interface {
	Play(ctx context.Context, r io.Reader, stop <-chan struct{}) error
}

// Session runs the curator's conversation loop: visitor transcripts come in,
// streamed replies go out through TTS, and a new utterance mid-reply
// interrupts the turn.
type Session struct {
	cfg     *config.Config
	persona *persona.Persona
	model   interfaces.LanguageModel
	tts     interfaces.TextToSpeech
	player  speechPlayer
	db      cache.Cache
	logger  log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state int32

	mu           sync.Mutex
	history      []interfaces.ChatMessage
	cancelTurn   context.CancelFunc
	stopPlayback chan struct{}

	// turnMu serializes turn admission. The transcription pool delivers
	// transcripts from several workers at once, and the interrupt, wait,
	// start sequence must not interleave.
	turnMu sync.Mutex
	turnWG sync.WaitGroup
}

// NewSession wires the conversation loop. The db may be nil when caching is
// off.
func NewSession(cfg *config.Config, p *persona.Persona, model interfaces.LanguageModel, tts interfaces.TextToSpeech, player speechPlayer, db cache.Cache, logger log.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		cfg:     cfg,
		persona: p,
		model:   model,
		tts:     tts,
		player:  player,
		db:      db,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return State(atomic.LoadInt32(&s.state))
}

func (s *Session) setState(state State) {
	atomic.StoreInt32(&s.state, int32(state))
}

// Start restores any persisted conversation and speaks the greeting. The
// greeting goes straight to TTS without an LLM turn, and a visitor can talk
// over it.
func (s *Session) Start() error {
	if s.db != nil {
		history, err := s.db.LoadConversation(s.cfg.LiveKit.Room)
		if err != nil {
			s.logger.Error("loading persisted conversation", err)
		} else if len(history) > 0 {
			s.mu.Lock()
			s.history = history
			s.mu.Unlock()
			s.logger.Infof("Restored %d conversation messages", len(history))
		}
	}

	stop := make(chan struct{})
	s.mu.Lock()
	s.stopPlayback = stop
	s.mu.Unlock()

	s.setState(StateSpeaking)
	defer s.setState(StateListening)

	if err := s.speak(s.ctx, s.persona.Greeting(), stop, true); err != nil {
		if errors.Is(err, audio.ErrInterrupted) {
			return nil
		}
		return fmt.Errorf("failed to speak greeting: %w", err)
	}
	return nil
}

// HandleTranscript starts a reply turn for a visitor transcript, interrupting
// any turn already in flight.
func (s *Session) HandleTranscript(participant, transcript string) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.Interrupt()
	s.turnWG.Wait()

	turnCtx, cancel := context.WithCancel(s.ctx)
	stop := make(chan struct{})

	s.mu.Lock()
	s.cancelTurn = cancel
	s.stopPlayback = stop
	s.history = append(s.history, interfaces.ChatMessage{Role: "user", Content: transcript})
	s.trimHistoryLocked()
	messages := append([]interfaces.ChatMessage(nil), s.history...)
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.LogTranscript(s.cfg.LiveKit.Room, participant, transcript); err != nil {
			s.logger.Error("logging visitor transcript", err)
		}
	}

	s.turnWG.Add(1)
	go func() {
		defer s.turnWG.Done()
		defer cancel()
		s.runTurn(turnCtx, stop, participant, messages)
	}()
}

// Interrupt cancels the in-flight turn and cuts playback. Safe to call when
// nothing is running.
func (s *Session) Interrupt() {
	s.mu.Lock()
	cancelTurn := s.cancelTurn
	stop := s.stopPlayback
	s.cancelTurn = nil
	s.stopPlayback = nil
	s.mu.Unlock()

	state := s.State()
	if cancelTurn == nil && stop == nil {
		return
	}
	if cancelTurn != nil {
		cancelTurn()
	}
	if stop != nil {
		close(stop)
	}
	if state == StateThinking || state == StateSpeaking {
		utils.IncrementInterruptions()
		s.logger.Info("Turn interrupted by visitor speech")
	}
}

// runTurn streams the model's reply sentence by sentence into TTS.
func (s *Session) runTurn(ctx context.Context, stop <-chan struct{}, participant string, messages []interfaces.ChatMessage) {
	turnStart := time.Now()
	s.setState(StateThinking)

	chunks := make(chan string, 64)
	type streamResult struct {
		reply string
		err   error
	}
	resultCh := make(chan streamResult, 1)
	go func() {
		reply, err := s.model.Stream(ctx, messages, chunks)
		resultCh <- streamResult{reply: reply, err: err}
	}()

	var chunker llm.SentenceChunker
	spoke := false
	interrupted := false
	firstAudio := true
	for delta := range chunks {
		for _, sentence := range chunker.Feed(delta) {
			if !spoke {
				s.setState(StateSpeaking)
				spoke = true
			}
			if err := s.speak(ctx, sentence, stop, firstAudio); err != nil {
				if errors.Is(err, audio.ErrInterrupted) || errors.Is(err, context.Canceled) {
					interrupted = true
				} else {
					s.logger.Error("speaking reply sentence", err)
				}
				break
			}
			firstAudio = false
		}
		if interrupted {
			break
		}
	}
	for range chunks {
		// Drain so the model goroutine can finish.
	}

	result := <-resultCh
	if result.err != nil && !errors.Is(result.err, context.Canceled) {
		s.logger.Error("streaming model reply", result.err)
	}

	if !interrupted {
		if tail := chunker.Flush(); tail != "" {
			if err := s.speak(ctx, tail, stop, firstAudio); err != nil && (errors.Is(err, audio.ErrInterrupted) || errors.Is(err, context.Canceled)) {
				interrupted = true
			}
		}
	}

	reply := strings.TrimSpace(result.reply)
	if reply != "" {
		s.mu.Lock()
		s.history = append(s.history, interfaces.ChatMessage{Role: "assistant", Content: reply})
		s.trimHistoryLocked()
		history := append([]interfaces.ChatMessage(nil), s.history...)
		s.mu.Unlock()

		if s.db != nil {
			if err := s.db.LogTranscript(s.cfg.LiveKit.Room, s.cfg.LiveKit.Identity, reply); err != nil {
				s.logger.Error("logging curator transcript", err)
			}
			if err := s.db.SaveConversation(s.cfg.LiveKit.Room, history); err != nil {
				s.logger.Error("persisting conversation", err)
			}
		}
	}

	if !interrupted {
		turnMs := time.Since(turnStart).Milliseconds()
		utils.IncrementTurnsCompleted()
		utils.RecordTurnDuration(turnMs)
		s.logger.Infof("Turn for %s completed in %dms (%d reply chars)", participant, turnMs, len(reply))
		s.setState(StateListening)
	}
}

// speak synthesizes one chunk of text and plays it onto the track.
func (s *Session) speak(ctx context.Context, text string, stop <-chan struct{}, recordLatency bool) error {
	start := time.Now()
	body, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	defer func() { _ = body.Close() }()

	if recordLatency {
		utils.RecordTTSFirstAudio(time.Since(start).Milliseconds())
	}
	return s.player.Play(ctx, body, stop)
}

// trimHistoryLocked caps the history at the configured window. Callers hold
// s.mu.
func (s *Session) trimHistoryLocked() {
	max := s.cfg.LLM.MaxHistory
	if max > 0 && len(s.history) > max {
		s.history = s.history[len(s.history)-max:]
	}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []interfaces.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]interfaces.ChatMessage(nil), s.history...)
}

// Close interrupts any running turn and stops the session.
func (s *Session) Close() {
	s.Interrupt()
	s.cancel()
	s.turnMu.Lock()
	s.turnWG.Wait()
	s.turnMu.Unlock()
	s.setState(StateIdle)
}
