package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// errProviderBusy marks a rate-limit or transient server failure. These get a
// single fixed-delay retry; everything else fails immediately.
var errProviderBusy = errors.New("gemini provider busy")

type geminiClient struct {
	apiKey string
	model  string
	httpc  *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration

	retryDelay time.Duration
}

func newGeminiClient(apiKey, model string, httpc *http.Client) *geminiClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &geminiClient{
		apiKey:      strings.TrimSpace(apiKey),
		model:       model,
		httpc:       httpc,
		minInterval: 100 * time.Millisecond,
		retryDelay:  500 * time.Millisecond,
	}
}

func (c *geminiClient) isConfigured() bool {
	return c.apiKey != ""
}

// geminiRequest is the request body for the generateContent API.
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the response from the generateContent API.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// generate sends a single prompt and returns the model's text output. Rate
// limiting and 5xx responses get one delayed retry; other failures return
// immediately so the caller can fall back to the untranslated text.
func (c *geminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if !c.isConfigured() {
		return "", errors.New("gemini api key not configured")
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     0.3,
			MaxOutputTokens: 1024,
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiBaseURL, c.model, c.apiKey)

	var out string
	err = retry.Do(
		func() error {
			c.throttle()

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create gemini request: %w", err))
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
				return fmt.Errorf("%w: status %d", errProviderBusy, resp.StatusCode)
			}
			if resp.StatusCode >= 400 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				return retry.Unrecoverable(fmt.Errorf("gemini API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
			}

			var decoded geminiResponse
			if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode gemini response: %w", err))
			}
			if decoded.Error != nil {
				return retry.Unrecoverable(fmt.Errorf("gemini API error: %s", decoded.Error.Message))
			}
			if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
				return retry.Unrecoverable(errors.New("gemini returned empty response"))
			}

			out = decoded.Candidates[0].Content.Parts[0].Text
			return nil
		},
		retry.Attempts(2),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errProviderBusy) }),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return "", err
	}
	return stripFences(strings.TrimSpace(out)), nil
}

// throttle spaces requests out by minInterval.
func (c *geminiClient) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if since := time.Since(c.lastRequest); since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
}

// stripFences removes a surrounding markdown code fence that models sometimes
// wrap plain-text output in despite instructions.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
