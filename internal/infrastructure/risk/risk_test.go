package risk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blue-collar-portal/internal/config"
	domainrisk "blue-collar-portal/internal/domain/risk"
	"blue-collar-portal/internal/infrastructure/llm"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHTTPAssessor_DecodesAndClamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assess" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in domainrisk.Content
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in.Title != "Welder" {
			t.Errorf("expected title Welder got %q", in.Title)
		}
		_, _ = w.Write([]byte(`{"risk_score":140,"auto_approve":false,"flags":["upfront_fee",""],"explanation":"asks for deposit"}`))
	}))
	defer srv.Close()

	a := NewHTTPAssessor(srv.URL+"/", time.Second, quietLogger())
	got, err := a.Assess(context.Background(), domainrisk.Content{Title: "Welder"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Score != 100 {
		t.Fatalf("expected clamped score 100 got %d", got.Score)
	}
	if len(got.Flags) != 1 || got.Flags[0] != "upfront_fee" {
		t.Fatalf("unexpected flags %v", got.Flags)
	}
}

func TestHTTPAssessor_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	a := NewHTTPAssessor(srv.URL, time.Second, quietLogger())
	if _, err := a.Assess(context.Background(), domainrisk.Content{}); err == nil {
		t.Fatalf("expected error on 503")
	}
}

func TestHTTPAssessor_RespectsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	a := NewHTTPAssessor(srv.URL, 5*time.Second, quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := a.Assess(ctx, domainrisk.Content{}); err == nil {
		t.Fatalf("expected deadline error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("assess did not honor deadline")
	}
}

func TestNewHTTPAssessor_EmptyBaseURL(t *testing.T) {
	if a := NewHTTPAssessor("  ", time.Second, nil); a != nil {
		t.Fatalf("expected nil assessor")
	}
}

func TestOpenAIAssessor_ParsesJSONCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if rf, ok := req["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
			t.Errorf("expected json_object response format, got %v", req["response_format"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"risk_score\": 85, \"auto_approve\": false, \"flags\": [\"unrealistic_pay\"], \"explanation\": \"pay far above market\"}"}
			}]
		}`))
	}))
	defer srv.Close()

	client := llm.NewClient(config.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	a := NewOpenAIAssessor(client, "gpt-4o-mini")

	got, err := a.Assess(context.Background(), domainrisk.Content{Title: "Driver", Description: "RM 20,000 per week"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Score != 85 || got.AutoApprove {
		t.Fatalf("unexpected assessment %+v", got)
	}
	if got.Explanation != "pay far above market" {
		t.Fatalf("unexpected explanation %q", got.Explanation)
	}
}

func TestOpenAIAssessor_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	client := llm.NewClient(config.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	a := NewOpenAIAssessor(client, "gpt-4o-mini")

	_, err := a.Assess(context.Background(), domainrisk.Content{})
	if !errors.Is(err, domainrisk.ErrInvalidAssessment) {
		t.Fatalf("expected ErrInvalidAssessment got %v", err)
	}
}
