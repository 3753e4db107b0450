package room

import (
	"testing"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

func TestMintVisitorToken(t *testing.T) {
	cfg := &config.LiveKitConfig{
		APIKey:    "APIabcdef",
		APISecret: "secret-signing-key-for-tests",
		Room:      "heritage-hall",
	}

	token, err := MintVisitorToken(cfg, "visitor-1", 10*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verifier, err := auth.ParseAPIToken(token)
	require.NoError(t, err)
	assert.Equal(t, "APIabcdef", verifier.APIKey())

	grants, err := verifier.Verify("secret-signing-key-for-tests")
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", grants.Identity)
	require.NotNil(t, grants.Video)
	assert.True(t, grants.Video.RoomJoin)
	assert.Equal(t, "heritage-hall", grants.Video.Room)
}

func TestMintVisitorToken_EmptyIdentity(t *testing.T) {
	cfg := &config.LiveKitConfig{APIKey: "k", APISecret: "s", Room: "heritage-hall"}

	_, err := MintVisitorToken(cfg, "", time.Minute)
	assert.ErrorContains(t, err, "identity is required")
}
