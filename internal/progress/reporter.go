// Package progress converts raw transfer samples into throttled, formatted
// status updates. Reporting is best effort: a failed update never aborts the
// transfer it describes.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	slogctx "github.com/veqryn/slog-context"

	"github.com/vidstamp/watermark-bot/internal/transport"
)

const barSegments = 20

// EditFunc pushes one composed progress text to the update sink.
type EditFunc func(ctx context.Context, text string) error

// Reporter turns (transferred, total) samples into rate-limited textual
// updates. Report may be called at arbitrary frequency; updates are dropped
// when they arrive faster than minInterval or would report fewer bytes than an
// earlier update.
type Reporter struct {
	operation   string
	start       time.Time
	edit        EditFunc
	minInterval time.Duration

	mu        sync.Mutex
	lastBytes int64
	lastEdit  time.Time
}

func NewReporter(operation string, edit EditFunc, minInterval time.Duration) *Reporter {
	return &Reporter{
		operation:   operation,
		start:       time.Now(),
		edit:        edit,
		minInterval: minInterval,
	}
}

// Report emits a progress update for the given sample. Transient transport
// throttling is retried once after the advertised delay; every other failure
// is swallowed.
func (r *Reporter) Report(ctx context.Context, transferred, total int64) {
	if r.edit == nil {
		return
	}

	r.mu.Lock()
	if transferred < r.lastBytes {
		r.mu.Unlock()
		return
	}
	if transferred < total && time.Since(r.lastEdit) < r.minInterval {
		r.mu.Unlock()
		return
	}
	r.lastBytes = transferred
	r.lastEdit = time.Now()
	elapsed := time.Since(r.start)
	r.mu.Unlock()

	text := compose(r.operation, transferred, total, elapsed)
	if err := r.push(ctx, text); err != nil {
		slogctx.Debug(ctx, "Dropped progress update", "operation", r.operation, "error", err)
	}
}

func (r *Reporter) push(ctx context.Context, text string) error {
	// The backoff takes the wait the transport advertised with the throttle,
	// so the retry never fires before it has elapsed.
	var retryAfter time.Duration
	backoff := retry.WithMaxRetries(1, retry.BackoffFunc(func() (time.Duration, bool) {
		return retryAfter, false
	}))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := r.edit(ctx, text)

		var throttled *transport.ThrottledError
		if errors.As(err, &throttled) {
			retryAfter = throttled.RetryAfter
			return retry.RetryableError(err)
		}

		return err
	})
}

func compose(operation string, transferred, total int64, elapsed time.Duration) string {
	var percent float64
	if total > 0 {
		percent = float64(transferred) * 100 / float64(total)
	}
	if percent > 100 {
		percent = 100
	}

	var speed float64
	if secs := elapsed.Seconds(); secs > 0 {
		speed = float64(transferred) / secs
	}

	filled := int(percent / (100 / barSegments))
	if filled > barSegments {
		filled = barSegments
	}
	bar := "[" + strings.Repeat("■", filled) + strings.Repeat(" ", barSegments-filled) + "]"

	return fmt.Sprintf(
		"%s...\n%s %.2f%%\nSpeed: %s/s\nProcessed: %s / %s",
		operation, bar, percent,
		HumanSize(int64(speed)),
		HumanSize(transferred), HumanSize(total),
	)
}
