package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acloudcenter/livekit-alien-curator-demo/audio"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
	"github.com/acloudcenter/livekit-alien-curator-demo/log"
)

type fakeCache struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	deleted []string
}

func (f *fakeCache) SaveAudio(key string, data []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blobs == nil {
		f.blobs = make(map[string][]byte)
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeCache) GetAudio(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (f *fakeCache) DeleteAudio(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeCache) CleanAllAudio() (int64, error) { return 0, nil }
func (f *fakeCache) LogTranscript(room, participant, text string) error {
	return nil
}
func (f *fakeCache) RecentTranscripts(room string, n int64) ([]string, error) { return nil, nil }
func (f *fakeCache) SaveConversation(room string, messages []interfaces.ChatMessage) error {
	return nil
}
func (f *fakeCache) LoadConversation(room string) ([]interfaces.ChatMessage, error) {
	return nil, nil
}
func (f *fakeCache) AppendLogLine(line string) error { return nil }
func (f *fakeCache) Ping() error                     { return nil }
func (f *fakeCache) Close() error                    { return nil }

type fakeSTT struct {
	mu          sync.Mutex
	transcripts map[string]string
	err         error
	calls       int
}

func (f *fakeSTT) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.transcripts[string(audioData)], nil
}

func (f *fakeSTT) Name() string { return "fake" }
func (f *fakeSTT) Close()       {}

func collectTranscripts() (TranscriptHandler, func() map[string]string) {
	var mu sync.Mutex
	got := make(map[string]string)
	handler := func(participant, transcript string) {
		mu.Lock()
		defer mu.Unlock()
		got[participant] = transcript
	}
	snapshot := func() map[string]string {
		mu.Lock()
		defer mu.Unlock()
		out := make(map[string]string, len(got))
		for k, v := range got {
			out[k] = v
		}
		return out
	}
	return handler, snapshot
}

func TestPoolTranscribes(t *testing.T) {
	stt := &fakeSTT{transcripts: map[string]string{"ogg-blob": "tell me about mother"}}
	handler, snapshot := collectTranscripts()

	pool := New(2, 8, stt, nil, log.NewLogger(io.Discard), handler)
	pool.Start()

	pool.Submit(TranscriptionJob{
		Ctx:       context.Background(),
		Utterance: audio.Utterance{Participant: "visitor-1", Audio: []byte("ogg-blob")},
	})
	pool.Stop()

	assert.Equal(t, map[string]string{"visitor-1": "tell me about mother"}, snapshot())
}

func TestPoolLoadsAudioFromCache(t *testing.T) {
	stt := &fakeSTT{transcripts: map[string]string{"ogg-blob": "show me gallery c"}}
	handler, snapshot := collectTranscripts()

	db := &fakeCache{}
	require.NoError(t, db.SaveAudio("audio:123-visitor-1-abcd1234", []byte("ogg-blob"), time.Minute))

	pool := New(1, 8, stt, db, log.NewLogger(io.Discard), handler)
	pool.Start()

	// Cached jobs carry no blob, only the key.
	pool.Submit(TranscriptionJob{
		Ctx:       context.Background(),
		Utterance: audio.Utterance{Participant: "visitor-1"},
		CacheKey:  "audio:123-visitor-1-abcd1234",
	})
	pool.Stop()

	assert.Equal(t, map[string]string{"visitor-1": "show me gallery c"}, snapshot())
	assert.Equal(t, []string{"audio:123-visitor-1-abcd1234"}, db.deleted)
}

func TestPoolSkipsEmptyTranscript(t *testing.T) {
	stt := &fakeSTT{transcripts: map[string]string{}}
	handler, snapshot := collectTranscripts()

	pool := New(1, 8, stt, nil, log.NewLogger(io.Discard), handler)
	pool.Start()

	pool.Submit(TranscriptionJob{
		Ctx:       context.Background(),
		Utterance: audio.Utterance{Participant: "visitor-1", Audio: []byte("silence")},
	})
	pool.Stop()

	assert.Empty(t, snapshot())
	assert.Equal(t, 1, stt.calls)
}

func TestPoolSurvivesSTTError(t *testing.T) {
	stt := &fakeSTT{err: errors.New("stt unavailable")}
	handler, snapshot := collectTranscripts()

	pool := New(1, 8, stt, nil, log.NewLogger(io.Discard), handler)
	pool.Start()

	pool.Submit(TranscriptionJob{
		Ctx:       context.Background(),
		Utterance: audio.Utterance{Participant: "visitor-1", Audio: []byte("blob"), Duration: time.Second},
	})
	pool.Stop()

	assert.Empty(t, snapshot())
}

func TestPoolDropsWhenQueueFull(t *testing.T) {
	stt := &fakeSTT{transcripts: map[string]string{}}
	handler, _ := collectTranscripts()

	// No workers started, so the single queue slot fills up.
	pool := New(1, 1, stt, nil, log.NewLogger(io.Discard), handler)

	job := TranscriptionJob{Ctx: context.Background(), Utterance: audio.Utterance{Participant: "visitor-1"}}
	pool.Submit(job)
	pool.Submit(job)

	require.Len(t, pool.jobQueue, 1)
}
