package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
)

const (
	keyPrefix      = "curator:"
	maxTranscripts = 100
)

// Cache is the interface for the service's Redis-backed store. All of it is
// soft state: utterance audio waiting for transcription, the transcript
// history, and a conversation snapshot for restarts.
type Cache interface {
	SaveAudio(key string, data []byte, ttl time.Duration) error
	GetAudio(key string) ([]byte, error)
	DeleteAudio(key string) error
	CleanAllAudio() (int64, error)
	LogTranscript(room, participant, text string) error
	RecentTranscripts(room string, n int64) ([]string, error)
	SaveConversation(room string, messages []interfaces.ChatMessage) error
	LoadConversation(room string) ([]interfaces.ChatMessage, error)
	AppendLogLine(line string) error
	Ping() error
	Close() error
}

// GenerateAudioCacheKey returns a unique key for one utterance blob.
func GenerateAudioCacheKey(participant string) string {
	return fmt.Sprintf("audio:%d-%s-%s", time.Now().Unix(), participant, uuid.NewString()[:8])
}

type DB struct {
	rdb *redis.Client
	ctx context.Context
}

// New connects to Redis. A nil config or empty address returns (nil, nil):
// the service runs without a cache in that case.
func New(cfg *config.RedisConfig) (*DB, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to cache at %s: %w", cfg.Addr, err)
	}
	return &DB{rdb: rdb, ctx: ctx}, nil
}

func (db *DB) Ping() error {
	return db.rdb.Ping(db.ctx).Err()
}

func (db *DB) Close() error {
	return db.rdb.Close()
}

func (db *DB) SaveAudio(key string, data []byte, ttl time.Duration) error {
	return db.rdb.Set(db.ctx, keyPrefix+key, data, ttl).Err()
}

func (db *DB) GetAudio(key string) ([]byte, error) {
	data, err := db.rdb.Get(db.ctx, keyPrefix+key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("could not load audio %s: %w", key, err)
	}
	return data, nil
}

func (db *DB) DeleteAudio(key string) error {
	return db.rdb.Del(db.ctx, keyPrefix+key).Err()
}

// CleanAllAudio deletes all utterance blobs. Run at boot so audio orphaned by
// a crash never reaches the transcription workers.
func (db *DB) CleanAllAudio() (int64, error) {
	pattern := keyPrefix + "audio:*"
	var keys []string
	iter := db.rdb.Scan(db.ctx, 0, pattern, 0).Iterator()
	for iter.Next(db.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return db.rdb.Del(db.ctx, keys...).Result()
}

type transcriptEntry struct {
	Participant string    `json:"participant"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

func transcriptKey(room string) string {
	return fmt.Sprintf("%sroom:%s:transcripts", keyPrefix, room)
}

// LogTranscript appends one line to the room's capped transcript history.
func (db *DB) LogTranscript(room, participant, text string) error {
	entry, err := json.Marshal(transcriptEntry{
		Participant: participant,
		Text:        text,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("could not marshal transcript entry: %w", err)
	}
	pipe := db.rdb.Pipeline()
	pipe.LPush(db.ctx, transcriptKey(room), entry)
	pipe.LTrim(db.ctx, transcriptKey(room), 0, maxTranscripts-1)
	_, err = pipe.Exec(db.ctx)
	return err
}

func (db *DB) RecentTranscripts(room string, n int64) ([]string, error) {
	return db.rdb.LRange(db.ctx, transcriptKey(room), 0, n-1).Result()
}

func conversationKey(room string) string {
	return fmt.Sprintf("%sroom:%s:conversation", keyPrefix, room)
}

// SaveConversation stores the chat context so a restarted curator resumes
// mid-visit instead of greeting everyone again.
func (db *DB) SaveConversation(room string, messages []interfaces.ChatMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("could not marshal conversation: %w", err)
	}
	return db.rdb.Set(db.ctx, conversationKey(room), data, 0).Err()
}

func (db *DB) LoadConversation(room string) ([]interfaces.ChatMessage, error) {
	data, err := db.rdb.Get(db.ctx, conversationKey(room)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("could not load conversation: %w", err)
	}
	var messages []interfaces.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("could not unmarshal conversation: %w", err)
	}
	return messages, nil
}

func (db *DB) AppendLogLine(line string) error {
	pipe := db.rdb.Pipeline()
	pipe.LPush(db.ctx, keyPrefix+"logs", line)
	pipe.LTrim(db.ctx, keyPrefix+"logs", 0, maxLogs-1)
	_, err := pipe.Exec(db.ctx)
	return err
}
