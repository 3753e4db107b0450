// acloudcenter/livekit-alien-curator-demo/worker/worker.go
package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/acloudcenter/livekit-alien-curator-demo/audio"
	"github.com/acloudcenter/livekit-alien-curator-demo/cache"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
	"github.com/acloudcenter/livekit-alien-curator-demo/log"
	"github.com/acloudcenter/livekit-alien-curator-demo/utils"
)

// TranscriptionJob holds all the necessary data for a single transcription task.
type TranscriptionJob struct {
	Ctx       context.Context
	Utterance audio.Utterance
	CacheKey  string
}

// TranscriptHandler receives the finished transcript for an utterance.
type TranscriptHandler func(participant, transcript string)

// Pool manages a fixed set of transcription workers and a queue of jobs.
type Pool struct {
	jobQueue     chan TranscriptionJob
	maxWorkers   int
	stt          interfaces.SpeechToText
	db           cache.Cache
	logger       log.Logger
	onTranscript TranscriptHandler
	wg           sync.WaitGroup
}

// New creates a transcription pool. The db may be nil when caching is off.
func New(maxWorkers, queueSize int, stt interfaces.SpeechToText, db cache.Cache, logger log.Logger, onTranscript TranscriptHandler) *Pool {
	return &Pool{
		jobQueue:     make(chan TranscriptionJob, queueSize),
		maxWorkers:   maxWorkers,
		stt:          stt,
		db:           db,
		logger:       logger,
		onTranscript: onTranscript,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 1; i <= p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
}

// Submit queues a job, dropping it when the queue is full so a slow STT
// backend never stalls the audio path.
func (p *Pool) Submit(job TranscriptionJob) {
	select {
	case p.jobQueue <- job:
	default:
		p.logger.Error("transcription queue", fmt.Errorf("queue full, dropping %s of utterance from %s", job.CacheKey, job.Utterance.Participant))
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobQueue {
		p.processTranscription(job)
	}
}

func (p *Pool) processTranscription(job TranscriptionJob) {
	// Cached jobs carry only the key; the blob lives in the cache until a
	// worker picks the job up.
	audioData := job.Utterance.Audio
	if len(audioData) == 0 && p.db != nil && job.CacheKey != "" {
		var err error
		audioData, err = p.db.GetAudio(job.CacheKey)
		if err != nil {
			p.logger.Error(fmt.Sprintf("loading cached audio for %s", job.Utterance.Participant), err)
			return
		}
	}

	start := time.Now()
	transcript, err := p.stt.Transcribe(job.Ctx, audioData)
	if err != nil {
		p.logger.Error(fmt.Sprintf("transcription for %s", job.Utterance.Participant), err)
		return
	}
	utils.RecordSTTLatency(time.Since(start).Milliseconds())

	if p.db != nil && job.CacheKey != "" {
		if err := p.db.DeleteAudio(job.CacheKey); err != nil {
			p.logger.Error("deleting cached utterance audio", err)
		}
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}
	utils.IncrementTranscriptsProduced()

	p.logger.Infof("%s: %s", job.Utterance.Participant, transcript)
	p.onTranscript(job.Utterance.Participant, transcript)
}
