package sessionmock

import (
	"context"
	"sync"
	"time"

	"github.com/vidstamp/watermark-bot/internal/serviceerr"
	"github.com/vidstamp/watermark-bot/internal/session"
)

type RepositoryOption func(*Repository)

// Repository is an in-memory session.Repository for tests. Error options make
// the corresponding operation fail unconditionally.
type Repository struct {
	mu       sync.Mutex
	sessions map[int64]session.Session

	loadErr, storeErr, deleteErr, listErr error
}

func WithSession(sess session.Session) RepositoryOption {
	return func(r *Repository) { r.sessions[sess.UserID] = sess }
}
func WithLoadError(err error) RepositoryOption {
	return func(r *Repository) { r.loadErr = err }
}
func WithStoreError(err error) RepositoryOption {
	return func(r *Repository) { r.storeErr = err }
}
func WithDeleteError(err error) RepositoryOption {
	return func(r *Repository) { r.deleteErr = err }
}
func WithListError(err error) RepositoryOption {
	return func(r *Repository) { r.listErr = err }
}

var _ = session.Repository(&Repository{})

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		sessions: make(map[int64]session.Session),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) Load(_ context.Context, userID int64) (session.Session, error) {
	if r.loadErr != nil {
		return session.Session{}, r.loadErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[userID]; ok {
		return sess, nil
	}
	return session.Session{}, serviceerr.ErrNotFound
}

func (r *Repository) Store(_ context.Context, sess session.Session, _ time.Duration) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.UserID] = sess
	return nil
}

func (r *Repository) Delete(_ context.Context, userID int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

func (r *Repository) List(_ context.Context) ([]session.Session, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions, nil
}
