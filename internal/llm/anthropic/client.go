package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm"
)

var _ llm.ModelCaller = (*Client)(nil)

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Call implements llm.ModelCaller using the Messages API with one image block
// followed by the instruction text.
func (c *Client) Call(ctx context.Context, req llm.ModelRequest) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = llm.DetectMediaType(req.Image)
	}

	body := messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: mediaType,
						Data:      base64.StdEncoding.EncodeToString(req.Image),
					},
				},
				{Type: "text", Text: req.Instruction},
			},
		}},
	}
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": c.cfg.Version,
	}

	raw, status, err := llm.SendJSON(ctx, c.http, c.cfg.BaseURL+"/v1/messages", body, headers, c.logger)
	if err != nil {
		var se *llm.StatusError
		if errors.As(err, &se) {
			var env errorEnvelope
			if jerr := json.Unmarshal(raw, &env); jerr == nil && env.Error.Message != "" {
				err = fmt.Errorf("anthropic: %s (type=%s, status=%d)", env.Error.Message, env.Error.Type, status)
			} else {
				err = fmt.Errorf("anthropic: http %d: %s", status, truncate(string(raw), 200))
			}
		} else {
			err = fmt.Errorf("anthropic: send request: %w", err)
		}
		c.logger.Error("llm.anthropic.http_error",
			"req_id", rid, "model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}

	var b strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic: no text content in response (stop_reason=%s)", mr.StopReason)
	}

	c.logger.Debug("llm.anthropic.ok",
		"req_id", rid, "model", c.cfg.Model, "stop_reason", mr.StopReason,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
