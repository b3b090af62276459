package searxng

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iWorld-y/product_radar/app/product_radar/pkg/search"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "cat mugs" || q.Get("format") != "json" || q.Get("categories") != "general" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"query":"cat mugs","answers":["a1"],"results":[
			{"title":"1","url":"https://1.example","content":"c1"},
			{"title":"2","url":"https://2.example","content":"c2"},
			{"title":"3","url":"https://3.example","content":"c3"}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/", time.Second).Search(context.Background(), &search.Request{Query: "cat mugs", MaxResults: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 2 || resp.Results[1].Title != "2" || resp.Answer != "a1" {
		t.Errorf("Search() = %+v", resp)
	}
}

func TestClient_SearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).Search(context.Background(), &search.Request{Query: "q"}); err == nil {
		t.Error("Search() error = nil")
	}
}
