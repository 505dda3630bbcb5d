package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider("test-key", "gpt-4o-mini", srv.URL)
}

func TestOpenAIExplain_Success(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q, want gpt-4o-mini", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "the prompt" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"## Overview\nexplained"}}]}`))
	})

	got, err := p.Explain(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if got != "## Overview\nexplained" {
		t.Errorf("Explain() = %q, want choice content", got)
	}
}

func TestOpenAIExplain_InsufficientQuotaCode(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	})

	_, err := p.Explain(context.Background(), "x")
	if !errors.Is(err, ErrQuota) {
		t.Errorf("error = %v, want ErrQuota", err)
	}
}

func TestOpenAIExplain_UnauthorizedIsQuota(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})

	_, err := p.Explain(context.Background(), "x")
	if !errors.Is(err, ErrQuota) {
		t.Errorf("error = %v, want ErrQuota", err)
	}
}

func TestOpenAIExplain_EmptyChoices(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := p.Explain(context.Background(), "x")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestOpenAIExplain_ServerErrorIsNotQuota(t *testing.T) {
	p := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"server blew up","type":"server_error"}}`))
	})

	_, err := p.Explain(context.Background(), "x")
	if err == nil {
		t.Fatal("Explain() should fail on a 500")
	}
	if errors.Is(err, ErrQuota) {
		t.Errorf("a 500 must not classify as quota: %v", err)
	}
}
