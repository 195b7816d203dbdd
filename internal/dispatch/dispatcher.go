// Package dispatch routes inbound transport events to the wizard state
// machine and hands completed sessions to the watermark pipeline.
package dispatch

import (
	"context"
	"errors"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/vidstamp/watermark-bot/internal/pipeline"
	"github.com/vidstamp/watermark-bot/internal/serviceerr"
	"github.com/vidstamp/watermark-bot/internal/transport"
	"github.com/vidstamp/watermark-bot/internal/wizard"
)

type Dispatcher struct {
	machine  *wizard.Machine
	pipeline *pipeline.Pipeline

	wg sync.WaitGroup
}

func New(machine *wizard.Machine, pipe *pipeline.Pipeline) *Dispatcher {
	return &Dispatcher{
		machine:  machine,
		pipeline: pipe,
	}
}

// Dispatch handles one inbound event. Guard failures (unsupported media,
// selections outside the current step, events without a session) are silent
// no-ops per design; only unexpected errors are logged. Pipeline runs execute
// on their own goroutine so event intake stays responsive.
func (d *Dispatcher) Dispatch(ctx context.Context, ev transport.Event) {
	ctx = slogctx.With(ctx, "user_id", ev.User())

	var err error
	switch ev := ev.(type) {
	case transport.CommandReceived:
		err = d.machine.HandleCommand(ctx, ev)
	case transport.VideoSubmitted:
		err = d.machine.HandleVideo(ctx, ev)
	case transport.TextReceived:
		err = d.machine.HandleText(ctx, ev)
	case transport.SelectionMade:
		sess, serr := d.machine.HandleSelection(ctx, ev)
		err = serr
		if sess != nil {
			spec := sess.Spec()
			d.wg.Go(func() {
				if _, perr := d.pipeline.Process(ctx, *sess, spec); perr != nil {
					slogctx.Debug(ctx, "Pipeline run failed", "error", perr)
				}
			})
		}
	default:
		slogctx.Warn(ctx, "Unknown event kind")
		return
	}

	if err == nil {
		return
	}
	if isGuardError(err) {
		slogctx.Debug(ctx, "Ignored event", "reason", err)
		return
	}
	slogctx.Error(ctx, "Event handling failed", "error", err)
}

// Wait blocks until all in-flight pipeline runs are done. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func isGuardError(err error) bool {
	return errors.Is(err, serviceerr.ErrUnsupportedMedia) ||
		errors.Is(err, serviceerr.ErrInvalidSelection) ||
		errors.Is(err, serviceerr.ErrSessionActive) ||
		errors.Is(err, serviceerr.ErrNotFound)
}
