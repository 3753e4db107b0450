// acloudcenter/livekit-alien-curator-demo/main.go
package main

import (
	"log"

	"github.com/acloudcenter/livekit-alien-curator-demo/app"
)

func main() {
	a, err := app.NewApp()
	if err != nil {
		log.Fatalf("Fatal error during startup: %v", err)
	}
	a.Run()
}
