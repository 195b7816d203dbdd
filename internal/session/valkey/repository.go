// Package sessionvalkey stores wizard sessions in valkey so that several bot
// replicas can share one session space.
package sessionvalkey

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/vidstamp/watermark-bot/internal/session"
)

var (
	ErrGetSession    = errors.New("getting session from store")
	ErrGetSessions   = errors.New("getting sessions from store")
	ErrStoreSession  = errors.New("setting session into storage")
	ErrDeleteSession = errors.New("deleting session from storage")
)

type Repository struct {
	store *store
}

var _ = session.Repository(&Repository{})

func NewRepository(valkeyClient valkey.Client, prefix string) *Repository {
	return &Repository{
		store: newStore(valkeyClient, prefix),
	}
}

func (r *Repository) Load(ctx context.Context, userID int64) (session.Session, error) {
	var s session.Session
	if err := r.store.Get(ctx, objectID(userID), &s); err != nil {
		return session.Session{}, errors.Join(ErrGetSession, err)
	}

	return s, nil
}

func (r *Repository) Store(ctx context.Context, s session.Session, ttl time.Duration) error {
	if err := r.store.Set(ctx, objectID(s.UserID), s, ttl); err != nil {
		return errors.Join(ErrStoreSession, err)
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, userID int64) error {
	if err := r.store.Destroy(ctx, objectID(userID)); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}

	return nil
}

func (r *Repository) List(ctx context.Context) ([]session.Session, error) {
	var sessions []session.Session
	if err := getStoreObjects(ctx, r.store, "*", &sessions); err != nil {
		return nil, errors.Join(ErrGetSessions, err)
	}

	return sessions, nil
}

func objectID(userID int64) string {
	return fmt.Sprintf("user_%s", strconv.FormatInt(userID, 10))
}
