// Package sentiment classifies report text into one of four urgency
// labels using an OpenAI-compatible chat completions API.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"civichub-service/models"

	"github.com/apex/log"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type classificationResult struct {
	Sentiment string `json:"sentiment"`
}

// Client represents an OpenAI API client used as the sentiment
// classifier. It either returns one of the four known labels or an
// error; callers decide what a failure means (report creation treats it
// as fatal to the operation).
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a new sentiment classifier client.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		client:   &http.Client{},
	}
}

// NewClientWithEndpoint creates a client against a custom API endpoint.
func NewClientWithEndpoint(apiKey, model, endpoint string) *Client {
	c := NewClient(apiKey, model)
	c.endpoint = endpoint
	return c
}

// Classify returns the sentiment label for a report's title and
// description.
func (c *Client) Classify(ctx context.Context, title, description string) (string, error) {
	prompt := fmt.Sprintf(`Analyze the sentiment and urgency of this civic problem report. Classify it as one of: urgent (immediate danger/severe issue), concerned (significant problem), neutral (informational), or positive (improvement/thank you).

Title: %q
Description: %q

Please output the result as JSON:
{ "sentiment": "<urgent|concerned|neutral|positive>" }`, title, description)

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := extractJSONFromMarkdown(chatResp.Choices[0].Message.Content)

	var result classificationResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		log.Errorf("Failed to parse classification response %s: %v", content, err)
		return "", fmt.Errorf("failed to parse classification response: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(result.Sentiment))
	if !models.ValidSentiment(label) {
		return "", fmt.Errorf("classifier returned unknown label %q", result.Sentiment)
	}

	return label, nil
}

var jsonBlockRegex = regexp.MustCompile("```(?:json|JSON)?\\s*\\n?([\\s\\S]*?)\\n?```")

// extractJSONFromMarkdown extracts JSON from markdown code blocks.
func extractJSONFromMarkdown(content string) string {
	matches := jsonBlockRegex.FindStringSubmatch(content)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// No code block; look for content between the outermost braces.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end != -1 && end > start {
		return content[start : end+1]
	}

	return content
}
