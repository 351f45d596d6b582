package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joseph-ayodele/fuel-tracker/internal/llm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient(Config{}, nil); err == nil || !strings.Contains(err.Error(), "api key required") {
		t.Fatalf("expected api key error, got %v", err)
	}

	c, err := NewClient(Config{APIKey: "sk-ant-test", BaseURL: "https://example.com/"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.cfg.BaseURL != "https://example.com" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", c.cfg.BaseURL)
	}
	if c.cfg.Version != DefaultVersion || c.cfg.Model != DefaultModel || c.cfg.MaxTokens != DefaultMaxTokens {
		t.Errorf("defaults not applied: %+v", c.cfg)
	}
}

func TestCall_Success(t *testing.T) {
	image := []byte("\x89PNG\r\n\x1a\nimage-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != DefaultVersion {
			t.Errorf("anthropic-version = %q", got)
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("unexpected message shape: %+v", req.Messages)
			return
		}
		img := req.Messages[0].Content[0]
		if img.Type != "image" || img.Source == nil || img.Source.MediaType != "image/png" {
			t.Errorf("image block = %+v", img)
		}
		if img.Source != nil && img.Source.Data != base64.StdEncoding.EncodeToString(image) {
			t.Error("image data not base64 encoded")
		}
		if txt := req.Messages[0].Content[1]; txt.Type != "text" || txt.Text != "extract" {
			t.Errorf("text block = %+v", txt)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"date\":\"2025-01-15\"}"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "sk-ant-test", BaseURL: srv.URL}, quietLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got, err := c.Call(context.Background(), llm.ModelRequest{Image: image, MediaType: "image/png", Instruction: "extract"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != `{"date":"2025-01-15"}` {
		t.Errorf("reply = %q", got)
	}
}

func TestCall_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errPart string
	}{
		{
			name:    "error envelope",
			status:  http.StatusTooManyRequests,
			body:    `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`,
			errPart: "slow down",
		},
		{
			name:    "plain error",
			status:  http.StatusBadGateway,
			body:    `upstream unavailable`,
			errPart: "http 502",
		},
		{
			name:    "no text content",
			status:  http.StatusOK,
			body:    `{"content":[],"stop_reason":"max_tokens"}`,
			errPart: "no text content",
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `not json`,
			errPart: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, quietLogger())
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			_, err = c.Call(context.Background(), llm.ModelRequest{Image: []byte("x"), Instruction: "extract"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error = %v, want it to contain %q", err, tt.errPart)
			}
		})
	}
}
