// acloudcenter/livekit-alien-curator-demo/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/acloudcenter/livekit-alien-curator-demo/agent"
	"github.com/acloudcenter/livekit-alien-curator-demo/audio"
	"github.com/acloudcenter/livekit-alien-curator-demo/cache"
	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
	"github.com/acloudcenter/livekit-alien-curator-demo/llm"
	"github.com/acloudcenter/livekit-alien-curator-demo/log"
	"github.com/acloudcenter/livekit-alien-curator-demo/persona"
	"github.com/acloudcenter/livekit-alien-curator-demo/room"
	"github.com/acloudcenter/livekit-alien-curator-demo/services"
	"github.com/acloudcenter/livekit-alien-curator-demo/stt"
	"github.com/acloudcenter/livekit-alien-curator-demo/tts"
	"github.com/acloudcenter/livekit-alien-curator-demo/worker"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media"
)

const (
	Version             = "0.1.0"
	healthCheckInterval = 30 * time.Second
	jobQueueSize        = 32
)

// App owns the full curator pipeline: room audio in, transcripts through the
// model, synthesized speech back out.
type App struct {
	Config   *config.Config
	Logger   log.Logger
	DB       cache.Cache
	STT      interfaces.SpeechToText
	Persona  *persona.Persona
	Session  *agent.Session
	Recorder *audio.Recorder
	Pool     *worker.Pool
	Conn     *room.Connection
	Health   *services.HealthChecker
	Status   *services.StatusServer

	ctx    context.Context
	cancel context.CancelFunc
}

// trackWriter defers track resolution until playback, since the room is
// connected after the session is built.
type trackWriter struct {
	app *App
}

func (tw *trackWriter) WriteSample(sample media.Sample) error {
	if tw.app.Conn == nil {
		return fmt.Errorf("room is not connected")
	}
	return tw.app.Conn.WriteSample(sample)
}

// NewApp loads configuration and wires every component short of the room
// connection, which Run establishes.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("fatal error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var db cache.Cache
	rdb, err := cache.New(&cfg.Redis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cache unavailable, continuing without it: %v\n", err)
	} else if rdb != nil {
		db = rdb
	}

	var mirror io.Writer
	if db != nil {
		mirror = cache.NewLogWriter(db)
	}
	appLogger := log.NewLogger(mirror)

	if db != nil {
		if cleaned, err := db.CleanAllAudio(); err != nil {
			appLogger.Error("cleaning orphaned utterance audio", err)
		} else if cleaned > 0 {
			appLogger.Infof("Cleaned %d orphaned audio entries from cache", cleaned)
		}
	}

	curator := persona.Default()
	systemPrompt, err := curator.SystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to build system prompt: %w", err)
	}

	sttClient, err := stt.New(&cfg.STT)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stt client: %w", err)
	}
	llmClient := llm.NewClient(&cfg.LLM, systemPrompt)
	ttsClient := tts.NewElevenLabs(&cfg.TTS)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:  cfg,
		Logger:  appLogger,
		DB:      db,
		STT:     sttClient,
		Persona: curator,
		ctx:     ctx,
		cancel:  cancel,
	}

	a.Session = agent.NewSession(cfg, curator, llmClient, ttsClient, audio.NewPlayer(&trackWriter{app: a}), db, appLogger)
	a.Pool = worker.New(cfg.Workers, jobQueueSize, sttClient, db, appLogger, a.Session.HandleTranscript)
	a.Recorder = audio.NewRecorder(&cfg.VAD, a.handleUtterance)

	a.Health = services.NewHealthChecker(healthCheckInterval, appLogger)
	a.Health.RegisterProvider("deepgram", "https://api.deepgram.com/v1/projects")
	a.Health.RegisterProvider("openai", cfg.LLM.BaseURL+"/models")
	a.Health.RegisterProvider("elevenlabs", "https://api.elevenlabs.io/v1/models")
	if probe := livekitProbeURL(cfg.LiveKit.URL); probe != "" {
		a.Health.RegisterProvider("livekit", probe)
	}

	a.Status = services.NewStatusServer(cfg, Version, a.Health, db, func() string {
		return a.Session.State().String()
	}, appLogger)

	return a, nil
}

// livekitProbeURL rewrites the signalling URL into an HTTP one the health
// checker can GET.
func livekitProbeURL(wsURL string) string {
	switch {
	case strings.HasPrefix(wsURL, "wss://"):
		return "https://" + strings.TrimPrefix(wsURL, "wss://")
	case strings.HasPrefix(wsURL, "ws://"):
		return "http://" + strings.TrimPrefix(wsURL, "ws://")
	default:
		return ""
	}
}

// handlePacket feeds visitor audio into the recorder. A visitor speaking
// while the curator is mid-reply cuts the reply off.
func (a *App) handlePacket(participant string, pkt *rtp.Packet) {
	if err := a.Recorder.ProcessPacket(participant, pkt); err != nil {
		a.Logger.Error(fmt.Sprintf("buffering audio from %s", participant), err)
		return
	}
	if !a.Recorder.Speaking(participant) {
		return
	}
	if state := a.Session.State(); state == agent.StateThinking || state == agent.StateSpeaking {
		a.Session.Interrupt()
	}
}

// handleUtterance caches the segmented utterance and queues it for
// transcription.
func (a *App) handleUtterance(u audio.Utterance) {
	cacheKey := ""
	if a.DB != nil {
		cacheKey = cache.GenerateAudioCacheKey(u.Participant)
		ttl := time.Duration(a.Config.Redis.AudioTTLMinutes) * time.Minute
		if err := a.DB.SaveAudio(cacheKey, u.Audio, ttl); err != nil {
			a.Logger.Error("caching utterance audio", err)
			cacheKey = ""
		} else {
			// The worker reloads the blob from the cache by key, so the
			// queue holds only metadata.
			u.Audio = nil
		}
	}

	a.Pool.Submit(worker.TranscriptionJob{
		Ctx:       a.ctx,
		Utterance: u,
		CacheKey:  cacheKey,
	})
}

// Run connects to the room, speaks the greeting, and blocks until a shutdown
// signal arrives.
func (a *App) Run() {
	a.Pool.Start()
	go a.Recorder.Run()
	a.Health.Start()
	if err := a.Status.Start(); err != nil {
		a.Logger.Error("starting status server", err)
	}

	conn, err := room.Connect(&a.Config.LiveKit, a.Logger, a.handlePacket)
	if err != nil {
		a.Logger.Fatal("connecting to room", err)
	}
	a.Conn = conn
	go conn.Watchdog(a.ctx)

	if err := a.Session.Start(); err != nil {
		a.Logger.Error("speaking greeting", err)
	}

	fmt.Println("Curator is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	a.Shutdown()
	fmt.Println("Curator shutting down.")
}

// Shutdown stops every component in dependency order.
func (a *App) Shutdown() {
	a.cancel()
	a.Session.Close()
	if a.Conn != nil {
		a.Conn.Close()
	}
	a.Recorder.Close()
	a.Pool.Stop()
	a.Health.Stop()
	a.STT.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("closing cache", err)
		}
	}
}
