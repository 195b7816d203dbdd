package sessionmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstamp/watermark-bot/internal/serviceerr"
	"github.com/vidstamp/watermark-bot/internal/session"
	sessionmemory "github.com/vidstamp/watermark-bot/internal/session/memory"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("load unknown user returns not found", func(t *testing.T) {
		repo := sessionmemory.NewRepository(time.Minute)

		_, err := repo.Load(ctx, 42)
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})

	t.Run("store then load round-trips", func(t *testing.T) {
		repo := sessionmemory.NewRepository(time.Minute)
		sess := session.Session{
			UserID: 42,
			ChatID: 7,
			Step:   session.StepAwaitingColor,
			Text:   "Hello",
		}

		require.NoError(t, repo.Store(ctx, sess, time.Minute))

		got, err := repo.Load(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, sess, got)
	})

	t.Run("sessions are isolated by user", func(t *testing.T) {
		repo := sessionmemory.NewRepository(time.Minute)

		require.NoError(t, repo.Store(ctx, session.Session{UserID: 1, Text: "one"}, time.Minute))
		require.NoError(t, repo.Store(ctx, session.Session{UserID: 2, Text: "two"}, time.Minute))

		first, err := repo.Load(ctx, 1)
		require.NoError(t, err)
		second, err := repo.Load(ctx, 2)
		require.NoError(t, err)

		assert.Equal(t, "one", first.Text)
		assert.Equal(t, "two", second.Text)
	})

	t.Run("delete removes the session", func(t *testing.T) {
		repo := sessionmemory.NewRepository(time.Minute)

		require.NoError(t, repo.Store(ctx, session.Session{UserID: 42}, time.Minute))
		require.NoError(t, repo.Delete(ctx, 42))

		_, err := repo.Load(ctx, 42)
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})

	t.Run("delete of an absent session is a no-op", func(t *testing.T) {
		repo := sessionmemory.NewRepository(time.Minute)

		assert.NoError(t, repo.Delete(ctx, 42))
	})

	t.Run("list returns all live sessions", func(t *testing.T) {
		repo := sessionmemory.NewRepository(time.Minute)

		require.NoError(t, repo.Store(ctx, session.Session{UserID: 1}, time.Minute))
		require.NoError(t, repo.Store(ctx, session.Session{UserID: 2}, time.Minute))

		sessions, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, sessions, 2)
	})

	t.Run("entries expire after their ttl", func(t *testing.T) {
		repo := sessionmemory.NewRepository(time.Minute)

		require.NoError(t, repo.Store(ctx, session.Session{UserID: 42}, 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)

		_, err := repo.Load(ctx, 42)
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)

		sessions, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})
}
