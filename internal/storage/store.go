// Package storage keeps the history of completed translations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"translingo/internal/config"
	"translingo/internal/models"
	"translingo/internal/redis"
)

// DefaultRecentLimit is used when Recent is called with a non-positive limit.
const DefaultRecentLimit = 10

// ErrUnsupportedBackend is returned for an unknown storage name.
var ErrUnsupportedBackend = errors.New("unsupported storage backend")

// Store records completed translations and lists the most recent ones.
// Records are append-only.
type Store interface {
	// Create assigns the next id and the creation time, persists the record
	// and returns it.
	Create(ctx context.Context, in models.NewTranslation) (*models.Translation, error)
	// Recent returns up to limit records, newest first with ties broken by
	// descending id.
	Recent(ctx context.Context, limit int) ([]*models.Translation, error)
	Close() error
}

// New builds the store named by cfg.BasicConfig.Storage.
func New(cfg *config.Config) (Store, error) {
	backend := cfg.BasicConfig.Storage
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3", "mysql", "postgres":
		db, err := Open(backend, cfg)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db, backend); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLStore(db, backend), nil
	case "redis":
		client, err := redis.NewRedisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, backend)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}

func newRecord(id int64, in models.NewTranslation, createdAt time.Time) *models.Translation {
	return &models.Translation{
		ID:             id,
		SourceText:     in.SourceText,
		TranslatedText: in.TranslatedText,
		SourceLanguage: in.SourceLanguage,
		TargetLanguage: in.TargetLanguage,
		Provider:       in.Provider,
		CreatedAt:      createdAt,
	}
}

// sortRecent orders records newest first, ties by descending id.
func sortRecent(records []*models.Translation) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
