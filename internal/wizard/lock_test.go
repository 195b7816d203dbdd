package wizard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLock(t *testing.T) {
	m := NewMachine(nil, nil, DefaultOptions(), time.Hour, true)

	t.Run("same user always gets the same lock", func(t *testing.T) {
		assert.Same(t, m.userLock(42), m.userLock(42))
		assert.Same(t, m.userLock(-3), m.userLock(-3))
	})

	t.Run("lock count stays bounded regardless of user count", func(t *testing.T) {
		seen := map[*sync.Mutex]bool{}
		for userID := int64(0); userID < 10_000; userID++ {
			seen[m.userLock(userID)] = true
		}
		assert.Len(t, seen, lockStripes)
	})
}
