// acloudcenter/livekit-alien-curator-demo/cmd/debug-cache/main.go
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/acloudcenter/livekit-alien-curator-demo/cache"
	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/interfaces"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	debugCache, err := cache.NewDebug(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer func() { _ = debugCache.Close() }()

	keys, err := debugCache.GetAllKeys()
	if err != nil {
		log.Fatalf("Failed to get keys: %v", err)
	}
	if len(keys) == 0 {
		fmt.Println("Cache is empty.")
		return
	}

	for _, key := range keys {
		fmt.Printf("\n--- Key: %s ---\n", key)
		keyType, err := debugCache.GetType(key)
		if err != nil {
			log.Printf("Failed to get type for key %s: %v", key, err)
			continue
		}
		fmt.Printf("Type: %s\n", keyType)

		switch keyType {
		case "string":
			val, err := debugCache.Get(key)
			if err != nil {
				log.Printf("Failed to get string value for key %s: %v", key, err)
				continue
			}
			if strings.Contains(key, ":conversation") {
				printConversation(val)
			} else if strings.Contains(key, ":audio:") {
				fmt.Printf("Value: (%d bytes of audio)\n", len(val))
			} else {
				fmt.Printf("Value: %s\n", val)
			}
		case "list":
			vals, err := debugCache.LRange(key, 0, -1)
			if err != nil {
				log.Printf("Failed to get list value for key %s: %v", key, err)
				continue
			}
			fmt.Println("Values:")
			for _, val := range vals {
				fmt.Printf("  - %s\n", val)
			}
		default:
			fmt.Println("Value: (unsupported type for printing)")
		}
	}
}

func printConversation(val string) {
	var messages []interfaces.ChatMessage
	if err := json.Unmarshal([]byte(val), &messages); err != nil {
		fmt.Printf("Value: %s\n", val)
		return
	}
	fmt.Println("Messages:")
	for _, msg := range messages {
		fmt.Printf("  - %s: %s\n", msg.Role, msg.Content)
	}
}
