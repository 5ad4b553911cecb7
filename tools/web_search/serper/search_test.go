package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("X-API-KEY"); got != "sk-test" {
			t.Errorf("api key header = %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		if payload["q"] != "solar energy trends" {
			t.Errorf("query = %v", payload["q"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]any{
				{"title": "First", "link": "https://a.example", "snippet": "snippet one"},
				{"title": "Second", "link": "https://b.example", "snippet": "snippet two"},
				{"title": "Third", "link": "https://c.example", "snippet": "snippet three"},
			},
		})
	}))
	defer srv.Close()

	s := Search{ApiKey: "sk-test", URL: srv.URL}
	results, err := s.Search(context.Background(), "solar energy trends", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (capped at k)", len(results))
	}
	if results[0].Title != "First" || results[0].URL != "https://a.example" || results[0].Snippet != "snippet one" {
		t.Fatalf("first result: %+v", results[0])
	}
}

func TestSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := Search{ApiKey: "bad", URL: srv.URL}
	if _, err := s.Search(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestSearchValidation(t *testing.T) {
	s := Search{ApiKey: "sk-test"}
	if _, err := s.Search(context.Background(), "  ", 3); err == nil {
		t.Fatal("expected error for empty query")
	}
	if _, err := s.Search(context.Background(), "q", 0); err == nil {
		t.Fatal("expected error for k = 0")
	}
}

func TestSearchNoOrganicBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"searchParameters": map[string]any{}})
	}))
	defer srv.Close()

	s := Search{ApiKey: "sk-test", URL: srv.URL}
	results, err := s.Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}
