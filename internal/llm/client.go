package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// maxResponseBytes caps how much of a provider response body is read.
const maxResponseBytes = 8 << 20

// Client represents a generic LLM API client
// Thread-safe for concurrent use
//
// config: Configuration for the LLM API
// httpClient: HTTP client for API requests
// baseURL: Base URL for the LLM API
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new LLM client with the given configuration
//
// Example:
//
//	client, err := llm.NewClient(&llm.Config{
//		Provider: llm.ProviderGemini,
//		APIKey:   os.Getenv("LLM_API_KEY"),
//		APIURL:   llm.DefaultGeminiURL,
//		Model:    "gemini-2.5-flash",
//		...
//	})
//	text, err := client.GenerateText(ctx, "Translate ...")
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client := &Client{
		config:  config,
		baseURL: strings.TrimRight(config.APIURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}

	return client, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.config.Model
}

// GenerateText sends a single user prompt and returns the model's text reply.
// The request format follows the configured provider.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.config.provider() == ProviderGemini {
		return c.generateContent(ctx, prompt, NewChatCompletionOptions())
	}
	return c.SimpleChat(ctx, prompt, "")
}

// ChatCompletion creates a chat completion request to an OpenAI compatible API
//
// Example:
//
//	messages := []llm.Message{
//		{Role: "user", Content: "Hello, how are you?"},
//	}
//	response, err := client.ChatCompletion(ctx, messages, nil)
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, opts *ChatCompletionOptions) (*ChatResponse, error) {
	if opts == nil {
		opts = NewChatCompletionOptions()
	}

	if opts.SystemPrompt != "" {
		systemMessage := Message{
			Role:    "system",
			Content: opts.SystemPrompt,
		}
		messages = append([]Message{systemMessage}, messages...)
	}

	request := ChatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   c.getMaxTokens(opts),
		Temperature: c.getTemperature(opts),
	}

	body, status, err := c.makeRequest(ctx, http.MethodPost, c.baseURL+"/chat/completions", request)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	var chatResponse ChatResponse
	if err := json.Unmarshal(body, &chatResponse); err != nil {
		return nil, fmt.Errorf("chat completion failed: failed to parse response: %w", err)
	}
	if chatResponse.Error != nil && chatResponse.Error.Message != "" {
		return &chatResponse, fmt.Errorf("chat completion failed: %w", chatResponse.Error)
	}
	if status < 200 || status >= 300 {
		return &chatResponse, fmt.Errorf("chat completion failed: API request failed with status %d: %s", status, truncate(string(body), 500))
	}

	return &chatResponse, nil
}

// SimpleChat provides a simple interface for chat completion
//
// Example:
//
//	response, err := client.SimpleChat(ctx, "What is Go?", "You are a helpful assistant.")
func (c *Client) SimpleChat(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	messages := []Message{
		{Role: "user", Content: prompt},
	}

	opts := NewChatCompletionOptions()
	if systemPrompt != "" {
		opts = opts.WithSystemPrompt(systemPrompt)
	}

	response, err := c.ChatCompletion(ctx, messages, opts)
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return response.Choices[0].Message.Content, nil
}

// generateContent calls the Gemini generateContent endpoint.
func (c *Client) generateContent(ctx context.Context, prompt string, opts *ChatCompletionOptions) (string, error) {
	request := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     c.getTemperature(opts),
			MaxOutputTokens: c.getMaxTokens(opts),
		},
	}
	if opts.SystemPrompt != "" {
		request.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: opts.SystemPrompt}}}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.config.Model))
	body, status, err := c.makeRequest(ctx, http.MethodPost, endpoint, request)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("generate content failed: failed to parse response: %w", err)
	}
	if response.Error != nil && response.Error.Message != "" {
		return "", fmt.Errorf("generate content failed: %w", response.Error)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("generate content failed: API request failed with status %d: %s", status, truncate(string(body), 500))
	}

	text, ok := response.text()
	if !ok {
		return "", fmt.Errorf("no candidates in response")
	}
	return text, nil
}

// makeRequest makes a raw HTTP request and returns the body and status code.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.config.GetHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if os.IsTimeout(err) {
			return nil, 0, fmt.Errorf("request timed out: %w", err)
		}
		return nil, 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return responseBody, resp.StatusCode, nil
}

func (c *Client) getMaxTokens(opts *ChatCompletionOptions) int {
	if opts.MaxTokens > 0 {
		return opts.MaxTokens
	}
	return c.config.MaxTokens
}

func (c *Client) getTemperature(opts *ChatCompletionOptions) float64 {
	if opts.Temperature >= 0 && opts.Temperature <= 2 {
		return opts.Temperature
	}
	return c.config.Temperature
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
