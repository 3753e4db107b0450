// acloudcenter/livekit-alien-curator-demo/room/token.go
package room

import (
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

// MintVisitorToken issues a room-join JWT for a visitor identity, so a
// frontend can join the hall without holding the API secret.
func MintVisitorToken(cfg *config.LiveKitConfig, identity string, ttl time.Duration) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("visitor identity is required")
	}

	at := auth.NewAccessToken(cfg.APIKey, cfg.APISecret)
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     cfg.Room,
	}
	at.AddGrant(grant).
		SetIdentity(identity).
		SetValidFor(ttl)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("failed to sign visitor token: %w", err)
	}
	return token, nil
}
