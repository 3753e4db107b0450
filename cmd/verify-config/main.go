// acloudcenter/livekit-alien-curator-demo/cmd/verify-config/main.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

// ANSI color codes for formatted output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

func main() {
	fmt.Printf("%s--- Curator Config Verifier ---%s\n", ColorBlue, ColorReset)

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("%s[FATAL]%s Could not determine user home directory: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}
	configPath := filepath.Join(home, ".curator", "curator.json")

	allChecksPassed := verifyConfigFile(configPath)
	if !verifyCredentials() {
		allChecksPassed = false
	}

	fmt.Println("\n--------------------------")
	if allChecksPassed {
		fmt.Printf("%s✅ Configuration seems correct.%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s❌ Some issues were found in the configuration.%s\n", ColorRed, ColorReset)
		os.Exit(1)
	}
}

func verifyConfigFile(path string) bool {
	fmt.Printf("\nVerifying %s'%s'%s...\n", ColorBlue, path, ColorReset)

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("  %s[FAIL]%s File not found or not readable: %v\n", ColorRed, ColorReset, err)
		fmt.Printf("  %s[HINT]%s Run the curator once to create it with defaults.\n", ColorYellow, ColorReset)
		return false
	}
	fmt.Printf("  %s[OK]%s File exists and is readable.\n", ColorGreen, ColorReset)

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields() // This is the key check for extra fields

	var cfg config.Config
	if err := decoder.Decode(&cfg); err != nil {
		fmt.Printf("  %s[FAIL]%s JSON is invalid or contains unexpected fields: %v\n", ColorRed, ColorReset, err)
		return false
	}
	fmt.Printf("  %s[OK]%s JSON is valid and all fields are recognized.\n", ColorGreen, ColorReset)

	if cfg.LiveKit.URL == "" {
		fmt.Printf("  %s[WARN]%s livekit.url is empty; set it or export LIVEKIT_URL.\n", ColorYellow, ColorReset)
	}
	if cfg.Workers <= 0 {
		fmt.Printf("  %s[WARN]%s workers is %d; the service needs at least one.\n", ColorYellow, ColorReset, cfg.Workers)
	}
	return true
}

// verifyCredentials runs the same validation the service does at boot, with
// env overrides applied.
func verifyCredentials() bool {
	fmt.Printf("\nVerifying %scredentials%s...\n", ColorBlue, ColorReset)

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  %s[FAIL]%s Could not load config: %v\n", ColorRed, ColorReset, err)
		return false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  %s[FAIL]%s %v\n", ColorRed, ColorReset, err)
		return false
	}
	fmt.Printf("  %s[OK]%s All required credentials are present.\n", ColorGreen, ColorReset)

	printResolved(cfg)
	return true
}

// printResolved dumps the effective configuration with secrets masked.
func printResolved(cfg *config.Config) {
	fmt.Printf("\nResolved configuration:\n")
	fmt.Printf("  livekit: url=%s room=%s identity=%s key=%s secret=%s\n",
		cfg.LiveKit.URL, cfg.LiveKit.Room, cfg.LiveKit.Identity,
		mask(cfg.LiveKit.APIKey), mask(cfg.LiveKit.APISecret))
	fmt.Printf("  stt:     provider=%s model=%s language=%s key=%s\n",
		cfg.STT.Provider, cfg.STT.Model, cfg.STT.Language, mask(cfg.STT.APIKey))
	fmt.Printf("  llm:     base_url=%s model=%s temperature=%.1f key=%s\n",
		cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Temperature, mask(cfg.LLM.APIKey))
	fmt.Printf("  tts:     voice_id=%s model=%s ssml=%v key=%s\n",
		cfg.TTS.VoiceID, cfg.TTS.Model, cfg.TTS.SSML, mask(cfg.TTS.APIKey))
	fmt.Printf("  redis:   addr=%s db=%d audio_ttl=%dm\n",
		cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.AudioTTLMinutes)
	fmt.Printf("  status:  port=%d workers=%d\n", cfg.Status.Port, cfg.Workers)
}

func mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
