// internal/browser/keepalive.go
package browser

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rakanhl/declare-cli/internal/ui"
)

// KeepAlive emits a harmless scroll on a fixed interval so the remote
// session does not expire during long batches. It is the only task allowed
// to touch the page concurrently with the main flow, and it is restricted to
// this one idempotent interaction.
type KeepAlive struct {
	page     ui.Page
	interval time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewKeepAlive builds a keep-alive task; Start must be called after the
// session is authenticated.
func NewKeepAlive(page ui.Page, interval time.Duration, logger *zap.Logger) *KeepAlive {
	return &KeepAlive{page: page, interval: interval, logger: logger.Named("keepalive")}
}

// Start launches the ticker goroutine. The task stops on Stop, on parent
// context cancellation, or silently on the first script failure, which
// usually means the session is gone anyway.
func (k *KeepAlive) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if err := k.nudge(runCtx); err != nil {
					k.logger.Debug("keep-alive interaction failed, stopping", zap.Error(err))
					return
				}
				k.logger.Debug("session keep-alive tick")
			}
		}
	}()
}

// Stop cancels the task and waits for the goroutine to exit. Safe to call
// more than once and before Start has ever run.
func (k *KeepAlive) Stop() {
	k.once.Do(func() {
		if k.cancel != nil {
			k.cancel()
		}
		k.wg.Wait()
	})
}

// nudge scrolls one pixel down and back up, leaving the viewport where the
// main flow expects it.
func (k *KeepAlive) nudge(ctx context.Context) error {
	if err := k.page.Script(ctx, "window.scrollBy(0, 1);"); err != nil {
		return err
	}
	return k.page.Script(ctx, "window.scrollBy(0, -1);")
}
