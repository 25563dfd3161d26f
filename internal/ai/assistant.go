package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/greenroute/backend/internal/metrics"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Assistant interface {
	Ask(ctx context.Context, prompt string, history []ChatMessage) (string, error)
}

const (
	defaultAssistantTimeout = 45 * time.Second
	assistantCacheTTL       = 60 * time.Second
	assistantCacheSize      = 256
)

// OpenAICompatAssistant talks to any /chat/completions endpoint. Prompts sent
// without history are answered from a short-lived cache.
type OpenAICompatAssistant struct {
	BaseURL     string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Client      *http.Client

	cache *expirable.LRU[string, string]
}

func NewOpenAICompatAssistant(baseURL, model, apiKey string, maxTokens int) *OpenAICompatAssistant {
	return &OpenAICompatAssistant{
		BaseURL:   baseURL,
		Model:     model,
		APIKey:    apiKey,
		MaxTokens: maxTokens,
		cache:     expirable.NewLRU[string, string](assistantCacheSize, nil, assistantCacheTTL),
	}
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}

type completionRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Messages    []ChatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// completionError covers both the OpenAI error envelope and the google.rpc
// variant some gateways return, which carries RetryInfo in details.
type completionError struct {
	Error struct {
		Message string `json:"message"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

func (a *OpenAICompatAssistant) Ask(ctx context.Context, prompt string, history []ChatMessage) (string, error) {
	if strings.TrimSpace(a.BaseURL) == "" {
		return "", fmt.Errorf("ASSISTANT_BASE_URL is not set")
	}
	if strings.TrimSpace(a.Model) == "" {
		return "", fmt.Errorf("ASSISTANT_MODEL is not set")
	}

	key := ""
	if len(history) == 0 && a.cache != nil {
		key = a.Model + "\x00" + prompt
		if v, ok := a.cache.Get(key); ok {
			metrics.AssistantCalls.WithLabelValues("cached").Inc()
			return v, nil
		}
	}

	answer, err := a.complete(ctx, completionRequest{
		Model:       a.Model,
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
		Messages:    append(append(make([]ChatMessage, 0, len(history)+1), history...), ChatMessage{Role: "user", Content: prompt}),
	})
	if err != nil {
		var rl RateLimitError
		if errors.As(err, &rl) {
			metrics.AssistantCalls.WithLabelValues("rate_limited").Inc()
		} else {
			metrics.AssistantCalls.WithLabelValues("error").Inc()
		}
		return "", err
	}
	metrics.AssistantCalls.WithLabelValues("ok").Inc()
	if key != "" {
		a.cache.Add(key, answer)
	}
	return answer, nil
}

func (a *OpenAICompatAssistant) complete(ctx context.Context, payload completionRequest) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(a.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(a.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	resp, err := a.client(ctx).Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", fmt.Errorf("assistant request timed out: %w", context.DeadlineExceeded)
		}
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var body completionError
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", RateLimitError{RetryAfter: retryAfter(resp.Header, body)}
		}
		if body.Error.Message != "" {
			return "", fmt.Errorf("assistant http error: %s: %s", resp.Status, body.Error.Message)
		}
		return "", fmt.Errorf("assistant http error: %s", resp.Status)
	}

	var res completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode assistant response: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("empty assistant response")
	}
	return res.Choices[0].Message.Content, nil
}

// client caps the request at the caller's remaining deadline when no client
// was injected.
func (a *OpenAICompatAssistant) client(ctx context.Context) *http.Client {
	if a.Client != nil {
		return a.Client
	}
	timeout := defaultAssistantTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	return &http.Client{Timeout: timeout}
}

// retryAfter prefers the Retry-After header (seconds) over a RetryInfo detail.
func retryAfter(h http.Header, body completionError) time.Duration {
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	for _, d := range body.Error.Details {
		if !strings.Contains(d.Type, "RetryInfo") {
			continue
		}
		if dur, err := time.ParseDuration(d.RetryDelay); err == nil {
			return dur
		}
	}
	return 0
}
