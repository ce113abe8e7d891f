package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(chatResponse{
			Message: message{Role: "assistant", Content: "<think>hmm</think>The answer is 42."},
			Done:    true,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3:8b", 0.2)
	reply, err := c.Chat(context.Background(), "You are terse.", "What is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", reply)

	assert.Equal(t, "qwen3:8b", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, 0.2, captured.Options.Temperature)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
}

func TestChatNoSystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		json.NewEncoder(w).Encode(chatResponse{Message: message{Content: "ok"}, Done: true})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "qwen3:8b", 0)
	reply, err := c.Chat(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, "missing:1b", 0)
	_, err := c.Chat(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestStripThink(t *testing.T) {
	assert.Equal(t, "plain", StripThink("plain"))
	assert.Equal(t, "after", StripThink("<think>reasoning\nmore reasoning</think>\nafter"))
	assert.Equal(t, "a b", StripThink("<think>x</think>a b<think>y</think>"))
	assert.Equal(t, "", StripThink("<think>only thoughts</think>"))
}
