// acloudcenter/livekit-alien-curator-demo/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Re-assign os.UserHomeDir to a variable so we can mock it in tests.
var osUserHomeDir = os.UserHomeDir

// LiveKitConfig holds connection settings for the hosted LiveKit deployment.
type LiveKitConfig struct {
	URL       string `json:"url"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Room      string `json:"room"`
	Identity  string `json:"identity"`
	Name      string `json:"name"`
}

// STTConfig selects and tunes the speech-to-text provider.
type STTConfig struct {
	Provider string `json:"provider"` // "deepgram", "deepgram-live" or "google"
	Model    string `json:"model"`
	Language string `json:"language"`
	APIKey   string `json:"api_key"`
}

// LLMConfig holds the chat completion settings.
type LLMConfig struct {
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	APIKey      string  `json:"api_key"`
	MaxHistory  int     `json:"max_history"`
}

// TTSConfig holds the ElevenLabs synthesis settings.
type TTSConfig struct {
	VoiceID string `json:"voice_id"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
	SSML    bool   `json:"ssml"`
}

// VADConfig tunes utterance boundary detection on the incoming audio.
type VADConfig struct {
	SilenceHangoverMs int `json:"silence_hangover_ms"`
	MinUtteranceMs    int `json:"min_utterance_ms"`
	MaxUtteranceSec   int `json:"max_utterance_sec"`
}

// RedisConfig holds cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr            string `json:"addr"`
	Password        string `json:"password"`
	DB              int    `json:"db"`
	AudioTTLMinutes int    `json:"audio_ttl_minutes"`
}

// StatusConfig holds the local status server settings.
type StatusConfig struct {
	Port int `json:"port"`
}

// Config is the full service configuration, stored as ~/.curator/curator.json.
type Config struct {
	LiveKit LiveKitConfig `json:"livekit"`
	STT     STTConfig     `json:"stt"`
	LLM     LLMConfig     `json:"llm"`
	TTS     TTSConfig     `json:"tts"`
	VAD     VADConfig     `json:"vad"`
	Redis   RedisConfig   `json:"redis"`
	Status  StatusConfig  `json:"status"`
	Workers int           `json:"workers"`
}

// Default returns the configuration matching the reference deployment:
// Deepgram nova-2 for STT, gpt-4o-mini for generation, ElevenLabs flash
// for synthesis.
func Default() *Config {
	return &Config{
		LiveKit: LiveKitConfig{
			Room:     "heritage-hall",
			Identity: "curator",
			Name:     "DAVID-7",
		},
		STT: STTConfig{
			Provider: "deepgram",
			Model:    "nova-2",
			Language: "en-US",
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxHistory:  40,
		},
		TTS: TTSConfig{
			VoiceID: "EXAVITQu4vr4xnSDxMaL",
			Model:   "eleven_flash_v2_5",
			SSML:    true,
		},
		VAD: VADConfig{
			SilenceHangoverMs: 600,
			MinUtteranceMs:    300,
			MaxUtteranceSec:   30,
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			AudioTTLMinutes: 5,
		},
		Status:  StatusConfig{Port: 8220},
		Workers: 2,
	}
}

// getConfigPath constructs the full path to the config file in ~/.curator.
func getConfigPath() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	return filepath.Join(home, ".curator", "curator.json"), nil
}

// Load reads .env.local/.env, then the JSON config file (creating it with
// defaults on first run), then applies environment variable overrides.
func Load() (*Config, error) {
	// Same lookup order as the reference deployment; missing files are fine.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := writeDefaultConfig(path, cfg); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %w", path, err)
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not decode config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// writeDefaultConfig creates the config directory and writes defaults so the
// operator has a file to edit on first run.
func writeDefaultConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write default config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets environment variables win over the JSON file.
// Secrets are expected to arrive this way and never live in curator.json.
func applyEnvOverrides(cfg *Config) {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfPresent(&cfg.LiveKit.URL, "LIVEKIT_URL")
	setIfPresent(&cfg.LiveKit.APIKey, "LIVEKIT_API_KEY")
	setIfPresent(&cfg.LiveKit.APISecret, "LIVEKIT_API_SECRET")
	setIfPresent(&cfg.LiveKit.Room, "LIVEKIT_ROOM")

	setIfPresent(&cfg.STT.Provider, "CURATOR_STT_PROVIDER")
	setIfPresent(&cfg.STT.APIKey, "DEEPGRAM_API_KEY")

	setIfPresent(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	setIfPresent(&cfg.LLM.BaseURL, "OPENAI_BASE_URL")

	setIfPresent(&cfg.TTS.APIKey, "ELEVENLABS_API_KEY")
	setIfPresent(&cfg.TTS.VoiceID, "ELEVEN_VOICE_ID")

	setIfPresent(&cfg.Redis.Addr, "REDIS_ADDR")
	setIfPresent(&cfg.Redis.Password, "REDIS_PASSWORD")

	if v := os.Getenv("CURATOR_STATUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Status.Port = port
		}
	}
}

// Validate checks that the credentials required by the enabled providers are
// present. Redis is not required.
func (c *Config) Validate() error {
	if c.LiveKit.URL == "" || c.LiveKit.APIKey == "" || c.LiveKit.APISecret == "" {
		return fmt.Errorf("LIVEKIT_URL, LIVEKIT_API_KEY and LIVEKIT_API_SECRET are required")
	}
	switch c.STT.Provider {
	case "deepgram", "deepgram-live":
		if c.STT.APIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required when stt.provider is %s", c.STT.Provider)
		}
	case "google":
		// Google client uses Application Default Credentials.
	default:
		return fmt.Errorf("unknown stt provider %q", c.STT.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.TTS.APIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is required")
	}
	return nil
}
