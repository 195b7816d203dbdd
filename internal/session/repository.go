package session

import (
	"context"
	"time"
)

// Repository is a concurrency-safe mapping from user identity to wizard
// session. Load returns serviceerr.ErrNotFound for unknown users.
type Repository interface {
	Load(ctx context.Context, userID int64) (Session, error)
	Store(ctx context.Context, sess Session, ttl time.Duration) error
	Delete(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]Session, error)
}
