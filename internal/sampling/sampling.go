// internal/sampling/sampling.go

// Package sampling asks an external model to describe a meal photo.
package sampling

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

// GatewayConfig configures the MCP proxy gateway client.
type GatewayConfig struct {
	ProxyURL string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// SamplingClient calls the create_completion tool of the OpenRouter gateway
// behind the MCP proxy.
type SamplingClient struct {
	httpClient *http.Client
	proxyURL   string
	apiKey     string
	model      string
}

func NewSamplingClient(cfg GatewayConfig) *SamplingClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SamplingClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		proxyURL: cfg.ProxyURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
	}
}

// Analyze sends the photo and optional description and returns the model's
// free-text answer.
func (s *SamplingClient) Analyze(ctx context.Context, imageBase64, description string) (string, error) {
	completionRequest := map[string]interface{}{
		"model":         s.model,
		"system_prompt": systemPrompt,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": buildPrompt(description)},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL(imageBase64)}},
				},
			},
		},
		"max_tokens":  2000,
		"temperature": 0.1,
	}

	gatewayResponse, err := s.callGateway(ctx, "create_completion", completionRequest)
	if err != nil {
		return "", fmt.Errorf("failed to get AI completion: %w", err)
	}

	return extractCompletionText(gatewayResponse), nil
}

func (s *SamplingClient) callGateway(ctx context.Context, toolName string, args interface{}) (string, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", s.proxyURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("request failed with status %d and couldn't read body: %v", resp.StatusCode, err)
		}
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var mcpResponse map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&mcpResponse); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if rpcErr, ok := mcpResponse["error"].(map[string]interface{}); ok {
		return "", fmt.Errorf("gateway error: %v", rpcErr["message"])
	}

	// Extract the result content
	if result, ok := mcpResponse["result"].(map[string]interface{}); ok {
		if content, ok := result["content"].([]interface{}); ok && len(content) > 0 {
			if textContent, ok := content[0].(map[string]interface{}); ok {
				if text, ok := textContent["text"].(string); ok {
					return text, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unexpected response format")
}

// extractCompletionText unwraps {"content": "..."} completion payloads and
// returns any other output unchanged.
func extractCompletionText(output string) string {
	var completion struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(output), &completion); err != nil || completion.Content == "" {
		return output
	}
	return completion.Content
}

func dataURL(imageBase64 string) string {
	if strings.HasPrefix(imageBase64, "data:") {
		return imageBase64
	}
	return "data:image/jpeg;base64," + imageBase64
}
