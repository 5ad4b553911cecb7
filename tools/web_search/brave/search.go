package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/utils"
)

const defaultURL = "https://api.search.brave.com/res/v1/web/search"

type Search struct {
	ApiKey string
	URL    string
}

func (s Search) Search(ctx context.Context, q string, k int) ([]models.SearchResult, error) {
	// https://api.search.brave.com/app/documentation/web-search
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("result count must be > 0")
	}
	base := s.URL
	if base == "" {
		base = defaultURL
	}
	url := fmt.Sprintf("%s?q=%s&count=%d", base, utils.UrlQuery(q), k)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.ApiKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave returned status %d", resp.StatusCode)
	}
	var raw struct {
		Web struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Snippet string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	var out []models.SearchResult
	for i, r := range raw.Web.Results {
		if i >= k {
			break
		}
		out = append(out, models.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	return out, nil
}
