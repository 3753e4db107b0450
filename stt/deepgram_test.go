package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acloudcenter/livekit-alien-curator-demo/config"
)

func TestParseDeepgramTranscript(t *testing.T) {
	body := []byte(`{"results":{"channels":[{"alternatives":[{"transcript":"tell me about the skull","confidence":0.99}]}]}}`)

	transcript, err := parseDeepgramTranscript(body)
	require.NoError(t, err)
	assert.Equal(t, "tell me about the skull", transcript)
}

func TestParseDeepgramTranscript_Empty(t *testing.T) {
	transcript, err := parseDeepgramTranscript([]byte(`{"results":{"channels":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestParseDeepgramTranscript_InvalidJSON(t *testing.T) {
	_, err := parseDeepgramTranscript([]byte(`not json`))
	assert.ErrorContains(t, err, "failed to decode deepgram response")
}

func TestDeepgramTranscribe(t *testing.T) {
	var gotAuth, gotContentType, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotModel = r.URL.Query().Get("model")
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"hello curator"}]}]}}`))
	}))
	defer server.Close()

	client := NewDeepgram(&config.STTConfig{APIKey: "dg-test-key", Model: "nova-2", Language: "en-US"})
	client.baseURL = server.URL

	transcript, err := client.Transcribe(context.Background(), []byte("OggS"))
	require.NoError(t, err)
	assert.Equal(t, "hello curator", transcript)
	assert.Equal(t, "Token dg-test-key", gotAuth)
	assert.Equal(t, "audio/ogg", gotContentType)
	assert.Equal(t, "nova-2", gotModel)
}

func TestDeepgramTranscribe_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"err_msg":"bad auth"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewDeepgram(&config.STTConfig{APIKey: "bad", Model: "nova-2", Language: "en-US"})
	client.baseURL = server.URL

	_, err := client.Transcribe(context.Background(), []byte("OggS"))
	assert.ErrorContains(t, err, "deepgram returned status 401")
}

func TestNewFactory(t *testing.T) {
	client, err := New(&config.STTConfig{Provider: "deepgram", Model: "nova-2", Language: "en-US"})
	require.NoError(t, err)
	assert.Equal(t, "deepgram", client.Name())

	live, err := New(&config.STTConfig{Provider: "deepgram-live", Model: "nova-2", Language: "en-US"})
	require.NoError(t, err)
	assert.Equal(t, "deepgram-live", live.Name())

	_, err = New(&config.STTConfig{Provider: "whisper"})
	assert.ErrorContains(t, err, "unknown stt provider")
}
