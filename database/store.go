package database

import (
	"context"
	"errors"
	"fmt"

	"itinera/config"
)

var (
	// ErrNotFound is returned when no itinerary has the given id.
	ErrNotFound = errors.New("itinerary not found")

	// ErrInvalidID is returned when an id cannot belong to the store at all.
	ErrInvalidID = errors.New("invalid itinerary ID format")
)

// Document is a stored itinerary as the store returns it: the body written
// by Create plus "id", "userId", "createdAt" and "updatedAt". Timestamps are
// in the store's native form; callers run them through
// itinerary.ConvertTimestamps before normalizing.
type Document = map[string]any

// Store persists itinerary documents per user.
type Store interface {
	Create(ctx context.Context, userID string, doc Document) (string, error)
	Get(ctx context.Context, id string) (Document, error)
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	// Update merges fields into the top level of the stored body and bumps
	// updatedAt. Identity and audit keys in fields are ignored.
	Update(ctx context.Context, id string, fields Document) (Document, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	keyID        = "id"
	keyUserID    = "userId"
	keyCreatedAt = "createdAt"
	keyUpdatedAt = "updatedAt"
)

func isManaged(key string) bool {
	switch key {
	case keyID, "_id", keyUserID, keyCreatedAt, keyUpdatedAt:
		return true
	}
	return false
}

// body copies doc without identity and audit keys.
func body(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if !isManaged(k) {
			out[k] = v
		}
	}
	return out
}

// Open connects to the store selected by cfg.DBDriver and runs migrations.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN())
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}
