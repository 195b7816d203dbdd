package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/vidstamp/watermark-bot/internal/config"
	"github.com/vidstamp/watermark-bot/internal/dispatch"
	"github.com/vidstamp/watermark-bot/internal/pipeline"
	"github.com/vidstamp/watermark-bot/internal/render"
	"github.com/vidstamp/watermark-bot/internal/session"
	sessionmemory "github.com/vidstamp/watermark-bot/internal/session/memory"
	sessionvalkey "github.com/vidstamp/watermark-bot/internal/session/valkey"
	"github.com/vidstamp/watermark-bot/internal/transport/telegram"
	"github.com/vidstamp/watermark-bot/internal/wizard"
)

// Main runs the bot: it wires the session store, wizard, pipeline and
// Telegram transport together and polls for updates until the context is
// cancelled.
func Main(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := pipeline.InitMeters(ctx, cfg.Application.Name); err != nil {
		return fmt.Errorf("initialising pipeline meters: %w", err)
	}

	repo, closeFn, err := initSessionRepository(cfg)
	if err != nil {
		return fmt.Errorf("initialising the session repository: %w", err)
	}
	defer closeFn()

	token, err := commoncfg.LoadValueFromSourceRef(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("loading telegram token: %w", err)
	}

	tg, err := telegram.New(string(token), cfg.Telegram.PollTimeout)
	if err != nil {
		return fmt.Errorf("initialising the telegram transport: %w", err)
	}

	machine := wizard.NewMachine(repo, tg, wizard.DefaultOptions(), cfg.Wizard.SessionTTL, cfg.Wizard.ReplacePending)
	pipe := pipeline.New(repo, tg, tg, render.NewFFmpeg(cfg.Pipeline.FFmpegBin), cfg.Pipeline.WorkDir, cfg.Pipeline.ProgressEditInterval)
	dispatcher := dispatch.New(machine, pipe)

	// With an in-process store the housekeeper job has nothing to sweep, so
	// the sweep runs inside this process instead.
	if !cfg.ValKey.Enabled {
		go housekeeperLoop(ctx, repo, cfg.Housekeeper)
	}

	err = tg.Run(ctx, dispatcher.Dispatch)

	// Let in-flight pipeline runs finish before tearing down the store.
	dispatcher.Wait()

	return err
}

// HousekeeperMain runs the idle-session sweep as a standalone job. It needs
// the shared valkey store; with the in-process store the sweep already runs
// inside the bot service.
func HousekeeperMain(ctx context.Context, cfg *config.Config) error {
	if !cfg.ValKey.Enabled {
		return errors.New("housekeeper job requires the valkey session store")
	}

	repo, closeFn, err := initSessionRepository(cfg)
	if err != nil {
		return fmt.Errorf("initialising the session repository: %w", err)
	}
	defer closeFn()

	housekeeperLoop(ctx, repo, cfg.Housekeeper)

	return nil
}

func housekeeperLoop(ctx context.Context, repo session.Repository, cfg config.Housekeeper) {
	c := time.Tick(cfg.TriggerInterval)
	for {
		if err := session.CleanupIdleSessions(ctx, repo, cfg.IdleTimeout); err != nil {
			slogctx.Error(ctx, "Error during session housekeeping", "error", err)
		}

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return
		}
	}
}

func initSessionRepository(cfg *config.Config) (_ session.Repository, closeFn func(), _ error) {
	if !cfg.ValKey.Enabled {
		return sessionmemory.NewRepository(cfg.Wizard.SessionTTL), func() {}, nil
	}

	valkeyHost, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("loading valkey host: %w", err)
	}

	valkeyUsername, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.User)
	if err != nil {
		return nil, nil, fmt.Errorf("loading valkey username: %w", err)
	}

	valkeyPassword, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("loading valkey password: %w", err)
	}

	valkeyClient, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{string(valkeyHost)},
		Username:    string(valkeyUsername),
		Password:    string(valkeyPassword),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return sessionvalkey.NewRepository(valkeyClient, cfg.ValKey.Prefix), valkeyClient.Close, nil
}
