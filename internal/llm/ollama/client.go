// Package ollama talks to a local Ollama inference endpoint over its
// /api/generate contract.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ntorreslo/ndf-letters/internal/common"
)

// Config for the Ollama client.
type Config struct {
	BaseURL       string        // default http://localhost:11434
	Model         string        // e.g. "llama3.2:3b"
	Temperature   float64       // deterministic-leaning sampling for structured output
	KeepAlive     string        // how long the model stays resident after a request
	Timeout       time.Duration // per-generate deadline; minutes for large scans on slow hardware
	WarmupTimeout time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2:3b"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.KeepAlive == "" {
		cfg.KeepAlive = "30m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if cfg.WarmupTimeout <= 0 {
		cfg.WarmupTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: &http.Client{}, logger: logger}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	KeepAlive   string  `json:"keep_alive,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// warmupPrompt mirrors the real task so the probe exercises the same
// tokenizer path the batch will.
const warmupPrompt = "Extrae datos del siguiente texto en JSON: tasa_fwd: 4000, valor_nominal_usd: 1000000, fecha_inicio: 01/01/2024"

// WarmUp issues a minimal low-token request so cold-load latency is paid
// before the first real document instead of being charged to it. Best-effort:
// a failed probe is logged and the batch proceeds.
func (c *Client) WarmUp(ctx context.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.WarmupTimeout)
	defer cancel()

	_, err := c.generate(ctx, generateRequest{
		Model:  c.cfg.Model,
		Prompt: warmupPrompt,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			KeepAlive:   c.cfg.KeepAlive,
			NumPredict:  100,
		},
	})
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("ollama.warmup.failed", "error", err, "elapsed_ms", elapsed.Milliseconds())
		return
	}
	if elapsed > 10*time.Second {
		c.logger.Info("ollama.warmup.cold_load", "model", c.cfg.Model, "elapsed_ms", elapsed.Milliseconds())
	} else {
		c.logger.Info("ollama.warmup.resident", "model", c.cfg.Model, "elapsed_ms", elapsed.Milliseconds())
	}
}

// Generate sends the extraction prompt and returns the raw response text.
// Timeouts and network failures come back as taxonomy errors so the caller
// can degrade the document to an error record instead of aborting the batch.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	return c.generate(ctx, generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			KeepAlive:   c.cfg.KeepAlive,
		},
	})
}

func (c *Client) generate(ctx context.Context, greq generateRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("ollama.generate.request",
		"req_id", rid,
		"model", greq.Model,
		"prompt_len", len(greq.Prompt),
	)

	bs, err := json.Marshal(greq)
	if err != nil {
		return "", common.NewAppError("INFERENCE_ERROR", "encode request", common.ErrInferenceNetwork)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return "", common.NewAppError("INFERENCE_ERROR", "build request", common.ErrInferenceNetwork)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			c.logger.Error("ollama.generate.timeout",
				"req_id", rid, "elapsed_ms", elapsed.Milliseconds())
			return "", common.NewAppError("INFERENCE_TIMEOUT",
				fmt.Sprintf("no response within %s", c.cfg.Timeout), common.ErrInferenceTimeout)
		}
		c.logger.Error("ollama.generate.send_error",
			"req_id", rid, "error", err, "elapsed_ms", elapsed.Milliseconds())
		return "", common.NewAppError("INFERENCE_ERROR", err.Error(), common.ErrInferenceNetwork)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("ollama.generate.body_close_error", "req_id", rid, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("ollama.generate.response",
		"req_id", rid,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", common.NewAppError("INFERENCE_ERROR",
			fmt.Sprintf("non-2xx status: %d", resp.StatusCode), common.ErrInferenceNetwork)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", common.NewAppError("INFERENCE_ERROR", "decode response", common.ErrInferenceNetwork)
	}
	return out.Response, nil
}
