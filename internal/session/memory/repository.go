// Package sessionmemory keeps wizard sessions in process memory. It is the
// default store for single-replica deployments; multi-replica setups should
// use the valkey repository instead.
package sessionmemory

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vidstamp/watermark-bot/internal/serviceerr"
	"github.com/vidstamp/watermark-bot/internal/session"
)

type Repository struct {
	cache *gocache.Cache
}

var _ = session.Repository(&Repository{})

func NewRepository(defaultTTL time.Duration) *Repository {
	return &Repository{
		cache: gocache.New(defaultTTL, defaultTTL/2),
	}
}

func (r *Repository) Load(_ context.Context, userID int64) (session.Session, error) {
	v, ok := r.cache.Get(key(userID))
	if !ok {
		return session.Session{}, serviceerr.ErrNotFound
	}

	return v.(session.Session), nil
}

func (r *Repository) Store(_ context.Context, sess session.Session, ttl time.Duration) error {
	r.cache.Set(key(sess.UserID), sess, ttl)
	return nil
}

func (r *Repository) Delete(_ context.Context, userID int64) error {
	r.cache.Delete(key(userID))
	return nil
}

func (r *Repository) List(_ context.Context) ([]session.Session, error) {
	items := r.cache.Items()
	sessions := make([]session.Session, 0, len(items))
	for _, item := range items {
		if item.Expired() {
			continue
		}
		sessions = append(sessions, item.Object.(session.Session))
	}

	return sessions, nil
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
