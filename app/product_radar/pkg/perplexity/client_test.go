package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/model"
)

func TestClient_Chat(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer pk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"trends"}}],"citations":["https://a.example",{"url":"https://b.example"}]}`))
	}))
	defer srv.Close()

	c := NewClient("pk-test", srv.URL+"/", time.Second)
	completion, err := c.Chat(context.Background(), ChatRequest{
		Model:       "sonar",
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Temperature: 0.3,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	want := &Completion{
		Content:   "trends",
		Citations: []model.Citation{"https://a.example", `{"url":"https://b.example"}`},
	}
	if diff := cmp.Diff(want, completion); diff != "" {
		t.Errorf("Chat() mismatch (-want +got):\n%s", diff)
	}
	if got.Model != "sonar" || got.MaxTokens != 100 || len(got.Messages) != 1 {
		t.Errorf("request = %+v", got)
	}
}

func TestClient_ChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"server error", http.StatusInternalServerError, "boom", func(err error) bool {
			return strings.Contains(err.Error(), "status 500")
		}},
		{"no choices", http.StatusOK, `{"choices":[]}`, func(err error) bool {
			return errors.Is(err, ErrEmptyCompletion)
		}},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":""}}]}`, func(err error) bool {
			return errors.Is(err, ErrEmptyCompletion)
		}},
		{"not json", http.StatusOK, `<html>`, func(err error) bool {
			return strings.Contains(err.Error(), "unmarshal")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("k", srv.URL, time.Second).Chat(context.Background(), ChatRequest{Model: "m"})
			if err == nil || !tt.check(err) {
				t.Errorf("Chat() error = %v", err)
			}
		})
	}
}

func TestClient_ChatMalformedCitations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object", `{"choices":[{"message":{"content":"trends"}}],"citations":{"url":"https://a.example"}}`},
		{"string", `{"choices":[{"message":{"content":"trends"}}],"citations":"https://a.example"}`},
		{"null", `{"choices":[{"message":{"content":"trends"}}],"citations":null}`},
		{"missing", `{"choices":[{"message":{"content":"trends"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewClient("k", srv.URL, time.Second).Chat(context.Background(), ChatRequest{Model: "m"})
			if err != nil {
				t.Fatalf("Chat() error = %v", err)
			}
			if got.Content != "trends" || len(got.Citations) != 0 {
				t.Errorf("Chat() = %+v", got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		{"趋势调研失败", 2, "趋势..."},
		{"ok\xff", 10, "ok"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) = %q is not valid UTF-8", tt.in, tt.n, got)
		}
	}
}
