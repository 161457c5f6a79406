// Package hf is a client for the Hugging Face Inference API covering the
// three calls the interpreter makes: zero-shot intent classification, token
// classification (NER), and free-text-to-JSON generation. Every call is
// bounded by a timeout, retried with exponential backoff, and cached for a
// short window; callers treat any error as "no signal".
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://api-inference.huggingface.co"
	defaultZeroShotModel  = "facebook/bart-large-mnli"
	defaultNERModel       = "dslim/bert-base-NER"
	defaultText2TextModel = "google/flan-t5-base"
)

// Client calls the Hugging Face Inference API.
type Client struct {
	baseURL        string
	token          string
	zeroShotModel  string
	nerModel       string
	text2TextModel string

	httpClient *http.Client
	cache      *responseCache

	attempts int
	backoff  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the inference endpoint, used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModels overrides the default model identifiers. Empty values keep
// the defaults.
func WithModels(zeroShot, ner, text2text string) Option {
	return func(c *Client) {
		if zeroShot != "" {
			c.zeroShotModel = zeroShot
		}
		if ner != "" {
			c.nerModel = ner
		}
		if text2text != "" {
			c.text2TextModel = text2text
		}
	}
}

// WithRetry overrides the retry policy.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.backoff = backoff
	}
}

// WithCacheTTL overrides the response cache window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = newResponseCache(ttl) }
}

// NewClient creates a Hugging Face inference client. The token may be empty
// for public models (rate-limited).
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:        defaultBaseURL,
		token:          token,
		zeroShotModel:  defaultZeroShotModel,
		nerModel:       defaultNERModel,
		text2TextModel: defaultText2TextModel,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		cache:          newResponseCache(60 * time.Second),
		attempts:       3,
		backoff:        800 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entity is a named entity from token classification.
type Entity struct {
	Word  string  `json:"word"`
	Group string  `json:"entity_group"`
	Score float64 `json:"score"`
}

// ZeroShot classifies text against candidate labels, returning the best
// label and the full score map.
func (c *Client) ZeroShot(ctx context.Context, text string, labels []string) (string, map[string]float64, error) {
	key := "zs::" + text + "::" + strings.Join(labels, ",") + "::" + c.zeroShotModel
	if cached, ok := c.cache.get(key); ok {
		res := cached.(zeroShotResult)
		return res.best, res.scores, nil
	}

	reqBody := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"candidate_labels": labels,
		},
	}

	var result struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	err := c.retry(ctx, 6*time.Second, func(ctx context.Context) error {
		return c.post(ctx, c.zeroShotModel, reqBody, &result)
	})
	if err != nil {
		return "", nil, err
	}

	scores := make(map[string]float64, len(result.Labels))
	best := ""
	for i, label := range result.Labels {
		if i >= len(result.Scores) {
			break
		}
		scores[label] = result.Scores[i]
		if best == "" || result.Scores[i] > scores[best] {
			best = label
		}
	}
	if best == "" {
		if len(labels) == 0 {
			return "", nil, fmt.Errorf("empty zero-shot response")
		}
		best = labels[0]
	}

	c.cache.set(key, zeroShotResult{best: best, scores: scores})
	return best, scores, nil
}

type zeroShotResult struct {
	best   string
	scores map[string]float64
}

// NER runs token classification and returns the recognized entities.
func (c *Client) NER(ctx context.Context, text string) ([]Entity, error) {
	key := "ner::" + text + "::" + c.nerModel
	if cached, ok := c.cache.get(key); ok {
		return cached.([]Entity), nil
	}

	reqBody := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"aggregation_strategy": "simple",
		},
	}

	var entities []Entity
	err := c.retry(ctx, 6*time.Second, func(ctx context.Context) error {
		return c.post(ctx, c.nerModel, reqBody, &entities)
	})
	if err != nil {
		return nil, err
	}

	c.cache.set(key, entities)
	return entities, nil
}

// Text2JSON generates text from the prompt and extracts the first JSON
// object from the response. An undecodable response yields an empty map,
// not an error.
func (c *Client) Text2JSON(ctx context.Context, prompt string) (map[string]any, error) {
	key := "t2j::" + prompt + "::" + c.text2TextModel
	if cached, ok := c.cache.get(key); ok {
		return cached.(map[string]any), nil
	}

	reqBody := map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_new_tokens": 256,
			"temperature":    0.2,
		},
	}

	var raw json.RawMessage
	err := c.retry(ctx, 10*time.Second, func(ctx context.Context) error {
		return c.post(ctx, c.text2TextModel, reqBody, &raw)
	})
	if err != nil {
		return nil, err
	}

	result := ExtractJSON(generatedText(raw))
	c.cache.set(key, result)
	return result, nil
}

// generatedText pulls the generated_text field out of the various response
// shapes the API returns (object, array of objects, or bare string).
func generatedText(raw json.RawMessage) string {
	var asList []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &asList); err == nil && len(asList) > 0 {
		return asList[0].GeneratedText
	}
	var asObj struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &asObj); err == nil && asObj.GeneratedText != "" {
		return asObj.GeneratedText
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	return string(raw)
}

func (c *Client) post(ctx context.Context, model string, reqBody any, out any) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/models/"+model, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("inference error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// retry runs fn up to c.attempts times with exponential backoff, bounding
// each attempt by perCall.
func (c *Client) retry(ctx context.Context, perCall time.Duration, fn func(context.Context) error) error {
	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			wait := c.backoff * (1 << (i - 1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, perCall)
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}
