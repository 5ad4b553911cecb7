// Package session stores the live pipeline session for its TTL. It is working
// state only: nothing outlives the session.
package session

import (
	"context"
	"fmt"

	"github.com/anirudh-hegde/scribe/config"
	"github.com/anirudh-hegde/scribe/models"
	"github.com/anirudh-hegde/scribe/session/inmemory"
	redis_session "github.com/anirudh-hegde/scribe/session/redis"
)

// Store interface for session management
type Store interface {
	// Create stores a new session, assigning an ID when the session has none.
	Create(ctx context.Context, sess *models.Session) error
	// Get returns the session or models.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Save overwrites the stored session and refreshes its TTL.
	Save(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, id string) error
}

type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)

func NewStore(cfg config.SessionConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case InMemoryStore:
		return inmemory.NewStore(cfg.TTL), nil
	case RedisStore:
		addr := fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)
		return redis_session.NewStore(addr, cfg.Redis.Password, cfg.Redis.DB, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.Store)
	}
}
