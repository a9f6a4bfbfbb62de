package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/moonheart/banana-slides/internal/config"
)

const (
	defaultGoogleAPIBase = "https://generativelanguage.googleapis.com"
	defaultOpenAIAPIBase = "https://api.openai.com/v1"

	defaultGeminiImageModel = "gemini-2.5-flash-image"
	defaultOpenAIImageModel = "gpt-image-1"
)

// Client issues outbound image generation calls. Endpoint, credentials and
// generation defaults are resolved from the runtime configuration mirror at
// call time, falling back to the env-derived static configuration, so a
// settings update takes effect on the next request.
type Client struct {
	cfg  *config.Config
	rt   *config.Runtime
	http *http.Client
}

func NewClient(cfg *config.Config, rt *config.Runtime) *Client {
	return &Client{
		cfg:  cfg,
		rt:   rt,
		http: &http.Client{Timeout: 120 * time.Second},
	}
}

// ProviderFormat returns the active provider wire format.
func (c *Client) ProviderFormat() string {
	if v, ok := c.rt.GetString(config.KeyAIProviderFormat); ok && v != "" {
		return v
	}
	return c.cfg.AIProviderFormat
}

// Endpoint returns the API base URL for the active provider.
func (c *Client) Endpoint() string {
	if c.isOpenAI() {
		if v, ok := c.rt.GetString(config.KeyOpenAIAPIBase); ok && v != "" {
			return v
		}
		if c.cfg.OpenAIAPIBase != "" {
			return c.cfg.OpenAIAPIBase
		}
		return defaultOpenAIAPIBase
	}
	if v, ok := c.rt.GetString(config.KeyGoogleAPIBase); ok && v != "" {
		return v
	}
	if c.cfg.GoogleAPIBase != "" {
		return c.cfg.GoogleAPIBase
	}
	return defaultGoogleAPIBase
}

// APIKey returns the credential for the active provider. An explicit empty
// override is returned as-is; it disables the credential.
func (c *Client) APIKey() string {
	if c.isOpenAI() {
		if v, ok := c.rt.GetString(config.KeyOpenAIAPIKey); ok {
			return v
		}
		return c.cfg.OpenAIAPIKey
	}
	if v, ok := c.rt.GetString(config.KeyGoogleAPIKey); ok {
		return v
	}
	return c.cfg.GoogleAPIKey
}

// ImageWorkers returns the fan-out bound for image generation.
func (c *Client) ImageWorkers() int {
	if v, ok := c.rt.GetInt(config.KeyMaxImageWorkers); ok && v > 0 {
		return v
	}
	return c.cfg.MaxImageWorkers
}

// DescriptionWorkers returns the fan-out bound for description generation.
func (c *Client) DescriptionWorkers() int {
	if v, ok := c.rt.GetInt(config.KeyMaxDescriptionWorkers); ok && v > 0 {
		return v
	}
	return c.cfg.MaxDescriptionWorkers
}

func (c *Client) isOpenAI() bool {
	return strings.EqualFold(c.ProviderFormat(), "openai")
}

func (c *Client) resolution() string {
	if v, ok := c.rt.GetString(config.KeyDefaultResolution); ok && v != "" {
		return v
	}
	return c.cfg.DefaultResolution
}

func (c *Client) aspectRatio() string {
	if v, ok := c.rt.GetString(config.KeyDefaultAspectRatio); ok && v != "" {
		return v
	}
	return c.cfg.DefaultAspectRatio
}

// GenerateImage produces one image for the prompt using the active
// provider's wire format and returns the raw image bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if c.isOpenAI() {
		return c.generateOpenAI(ctx, prompt)
	}
	return c.generateGemini(ctx, prompt)
}

// GenerateImages fans prompts out over at most ImageWorkers concurrent
// requests, preserving prompt order in the result.
func (c *Client) GenerateImages(ctx context.Context, prompts []string) ([][]byte, error) {
	results := make([][]byte, len(prompts))
	errs := make([]error, len(prompts))

	sem := make(chan struct{}, c.ImageWorkers())
	var wg sync.WaitGroup
	for i, p := range prompts {
		wg.Add(1)
		go func(i int, prompt string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = c.GenerateImage(ctx, prompt)
		}(i, p)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("prompt %d: %w", i, err)
		}
	}
	return results, nil
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					Data string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generateGemini(ctx context.Context, prompt string) ([]byte, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"responseModalities": []string{"IMAGE"},
			"imageConfig": map[string]any{
				"aspectRatio": c.aspectRatio(),
				"imageSize":   c.resolution(),
			},
		},
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.Endpoint(), "/"), defaultGeminiImageModel)

	body, err := c.post(ctx, url, payload, func(req *http.Request) {
		req.Header.Set("x-goog-api-key", c.APIKey())
	})
	if err != nil {
		return nil, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil {
				return base64.StdEncoding.DecodeString(part.InlineData.Data)
			}
		}
	}
	return nil, fmt.Errorf("no image in response")
}

type openAIResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

func (c *Client) generateOpenAI(ctx context.Context, prompt string) ([]byte, error) {
	payload := map[string]any{
		"model":  defaultOpenAIImageModel,
		"prompt": prompt,
		"size":   "auto",
	}

	url := strings.TrimRight(c.Endpoint(), "/") + "/images/generations"

	body, err := c.post(ctx, url, payload, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+c.APIKey())
	})
	if err != nil {
		return nil, err
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("no image in response")
	}
	return base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
}

func (c *Client) post(ctx context.Context, url string, payload any, auth func(*http.Request)) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
