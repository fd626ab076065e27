package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntorreslo/ndf-letters/internal/common"
)

func TestGenerateSendsWireContract(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": `{"tasa_fwd": 4236.20}`})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	resp, err := c.Generate(context.Background(), "extract this")
	require.NoError(t, err)
	assert.Equal(t, `{"tasa_fwd": 4236.20}`, resp)

	assert.Equal(t, "llama3.2:3b", got.Model)
	assert.Equal(t, "extract this", got.Prompt)
	assert.False(t, got.Stream)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
	assert.Equal(t, "30m", got.Options.KeepAlive)
	assert.Zero(t, got.Options.NumPredict)
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil)
	_, err := c.Generate(context.Background(), "slow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInferenceTimeout))
}

func TestGenerateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := c.Generate(context.Background(), "unreachable")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInferenceNetwork))
}

func TestGenerateNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInferenceNetwork))
}

func TestWarmUpNeverFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, WarmupTimeout: 50 * time.Millisecond}, nil)
	// Probe against a dead endpoint must not panic or abort anything.
	c.WarmUp(context.Background())
}

func TestWarmUpCapsTokens(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "ok"})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	c.WarmUp(context.Background())
	assert.Equal(t, 100, got.Options.NumPredict)
	assert.NotEmpty(t, got.Prompt)
}
