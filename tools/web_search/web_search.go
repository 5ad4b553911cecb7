package web_search

import (
	"context"
	"errors"
	"fmt"

	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/tools/web_search/brave"
	"github.com/anirudh-hegde/scribe/tools/web_search/serper"
)

// WebSearcher returns ranked results for a query. Failures are terminal for
// the call; there is no retry.
type WebSearcher interface {
	Search(ctx context.Context, q string, k int) ([]models.SearchResult, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported search provider")

// MaxResults bounds the per-query result count hint.
const MaxResults = 10

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}

// ResearchQueries derives the fixed query angles issued for a topic.
func ResearchQueries(topic string) []string {
	return []string{
		topic + " latest developments",
		topic + " trends applications",
		topic + " challenges opportunities future",
	}
}
