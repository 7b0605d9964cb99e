// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/format-engine/internal/httputil"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const defaultMaxTokens = 8192

// ClaudeBackend calls the Claude Messages API to perform conversions.
// Textual payloads travel inline in the prompt; binary payloads travel as
// base64 document or image blocks tagged with their content type. Both
// transports carry the same logical request (R2.2).
type ClaudeBackend struct {
	APIKey    string
	Model     string
	MaxTokens int
	UserAgent string
	Client    *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
// Content is either a plain string or a list of content blocks.
type claudeMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// claudeBlock is one content block in a multi-part message.
type claudeBlock struct {
	Type   string        `json:"type"`
	Text   string        `json:"text,omitempty"`
	Source *claudeSource `json:"source,omitempty"`
}

// claudeSource is the base64 source of a document or image block.
type claudeSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Convert sends one conversion request to the Claude API and returns the
// converted text. Failures are classified into the package's error
// taxonomy where recognizable (R4.3).
func (c *ClaudeBackend) Convert(ctx context.Context, req Request) (string, error) {
	msg, err := c.buildMessage(req)
	if err != nil {
		return "", err
	}

	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := claudeRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{msg},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, 0)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiBody, _ := io.ReadAll(resp.Body)
		return "", Classify(resp.StatusCode, strings.TrimSpace(string(apiBody)))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return stripFences(block.Text), nil
	}

	return "", fmt.Errorf("no text content in Claude API response")
}

// buildMessage selects the content transport: inline prompt text for
// textual payloads, a document/image block plus prompt text for binary
// ones. The prompt itself is identical apart from where the content rides.
func (c *ClaudeBackend) buildMessage(req Request) (claudeMessage, error) {
	if !req.Payload.Binary() {
		prompt, err := renderPrompt(req.Target, req.Instructions, req.Payload.Text)
		if err != nil {
			return claudeMessage{}, fmt.Errorf("rendering prompt: %w", err)
		}
		return claudeMessage{Role: "user", Content: prompt}, nil
	}

	prompt, err := renderPrompt(req.Target, req.Instructions, "")
	if err != nil {
		return claudeMessage{}, fmt.Errorf("rendering prompt: %w", err)
	}

	blockType := "document"
	if strings.HasPrefix(req.Payload.ContentType, "image/") {
		blockType = "image"
	}

	blocks := []claudeBlock{
		{
			Type: blockType,
			Source: &claudeSource{
				Type:      "base64",
				MediaType: req.Payload.ContentType,
				Data:      base64.StdEncoding.EncodeToString(req.Payload.Data),
			},
		},
		{Type: "text", Text: prompt},
	}
	return claudeMessage{Role: "user", Content: blocks}, nil
}

// stripFences removes a single wrapping Markdown code fence if the model
// emitted one despite the prompt contract.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[len(lines)-1], "```") {
		return text
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
