// acloudcenter/livekit-alien-curator-demo/room/room.go
package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/log"
	"github.com/acloudcenter/livekit-alien-curator-demo/utils"
)

const (
	reconnectBaseDelay = 2 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// PacketHandler receives every Opus packet from a subscribed audio track.
type PacketHandler func(participant string, pkt *rtp.Packet)

// Connection joins the hall as the curator, publishes its voice track, and
// fans incoming visitor audio out to the packet handler.
type Connection struct {
	cfg      *config.LiveKitConfig
	logger   log.Logger
	onPacket PacketHandler

	mu           sync.Mutex
	room         *lksdk.Room
	localTrack   *lksdk.LocalSampleTrack
	disconnected chan struct{}
	closed       bool
}

// Connect joins the configured room and publishes the curator's audio track.
func Connect(cfg *config.LiveKitConfig, logger log.Logger, onPacket PacketHandler) (*Connection, error) {
	c := &Connection{
		cfg:          cfg,
		logger:       logger,
		onPacket:     onPacket,
		disconnected: make(chan struct{}, 1),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) connect() error {
	callback := &lksdk.RoomCallback{
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: c.handleTrackSubscribed,
		},
		OnDisconnected: c.handleDisconnected,
	}

	room, err := lksdk.ConnectToRoom(c.cfg.URL, lksdk.ConnectInfo{
		APIKey:              c.cfg.APIKey,
		APISecret:           c.cfg.APISecret,
		RoomName:            c.cfg.Room,
		ParticipantIdentity: c.cfg.Identity,
		ParticipantName:     c.cfg.Name,
	}, callback)
	if err != nil {
		return fmt.Errorf("failed to connect to room %s: %w", c.cfg.Room, err)
	}

	localTrack, err := lksdk.NewLocalSampleTrack(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypeOpus,
		ClockRate: 48000,
		Channels:  2,
	})
	if err != nil {
		room.Disconnect()
		return fmt.Errorf("failed to create local audio track: %w", err)
	}
	if _, err := room.LocalParticipant.PublishTrack(localTrack, &lksdk.TrackPublicationOptions{
		Name: c.cfg.Name + "-voice",
	}); err != nil {
		room.Disconnect()
		return fmt.Errorf("failed to publish audio track: %w", err)
	}

	c.mu.Lock()
	c.room = room
	c.localTrack = localTrack
	c.mu.Unlock()

	c.logger.Infof("Connected to room %s as %s", c.cfg.Room, c.cfg.Identity)
	return nil
}

func (c *Connection) handleTrackSubscribed(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
	if track.Kind() != webrtc.RTPCodecTypeAudio {
		return
	}
	c.logger.Infof("Subscribed to audio track from %s", rp.Identity())
	go c.readTrack(track, rp.Identity())
}

// readTrack pumps RTP packets from one visitor track into the handler until
// the track ends.
func (c *Connection) readTrack(track *webrtc.TrackRemote, participant string) {
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			c.logger.Infof("Audio track from %s ended", participant)
			return
		}
		if len(pkt.Payload) == 0 {
			continue
		}
		c.onPacket(participant, pkt)
	}
}

func (c *Connection) handleDisconnected() {
	select {
	case c.disconnected <- struct{}{}:
	default:
	}
}

// WriteSample writes one Opus sample onto the curator's published track.
func (c *Connection) WriteSample(sample media.Sample) error {
	c.mu.Lock()
	track := c.localTrack
	c.mu.Unlock()
	if track == nil {
		return fmt.Errorf("local track is not published")
	}
	return track.WriteSample(sample, nil)
}

// Watchdog reconnects with backoff whenever the room connection drops. It
// returns when ctx is cancelled.
func (c *Connection) Watchdog(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.disconnected:
		}

		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}

		c.logger.Error("room watchdog", fmt.Errorf("disconnected from room %s, reconnecting", c.cfg.Room))
		delay := reconnectBaseDelay
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}

			if err := c.connect(); err == nil {
				utils.IncrementReconnects()
				break
			} else {
				c.logger.Error("room reconnect", err)
			}

			delay *= 2
			if delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
		}
	}
}

// Close disconnects from the room.
func (c *Connection) Close() {
	c.mu.Lock()
	c.closed = true
	room := c.room
	c.mu.Unlock()
	if room != nil {
		room.Disconnect()
	}
}
