package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm"
)

var _ llm.ModelCaller = (*Client)(nil)

// Call implements llm.ModelCaller using chat/completions with the image sent
// as a data URL.
func (c *Client) Call(ctx context.Context, req llm.ModelRequest) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": req.Instruction},
					{"type": "image_url", "image_url": map[string]any{"url": llm.DataURL(req.Image, req.MediaType)}},
				},
			},
		},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}

	endpoint := c.cfg.BaseURL + "/chat/completions"
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		var se *llm.StatusError
		if errors.As(err, &se) {
			var env struct {
				Error struct {
					Message string `json:"message"`
					Type    string `json:"type"`
				} `json:"error"`
			}
			if jerr := json.Unmarshal(raw, &env); jerr == nil && env.Error.Message != "" {
				err = fmt.Errorf("openai: %s (type=%s, status=%d)", env.Error.Message, env.Error.Type, status)
			} else {
				err = fmt.Errorf("openai status %d: %s", status, string(raw))
			}
		} else {
			err = fmt.Errorf("openai http error: %w", err)
		}
		c.logger.Error("llm.openai.http_error",
			"req_id", rid, "model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("no choices in openai response")
	}

	c.logger.Debug("llm.openai.ok",
		"req_id", rid, "model", c.cfg.Model,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return cc.Choices[0].Message.Content, nil
}
