// internal/browser/session.go
// Chrome session lifecycle. A Session owns the exec allocator and browser
// context; the Page it exposes is the single handle the pipeline drives.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/rakanhl/declare-cli/internal/config"
)

// Session is the live authenticated connection to the remote application.
// It is owned by the batch driver; recovery re-authenticates in place and
// never replaces the Session itself.
type Session struct {
	page   *Page
	logger *zap.Logger

	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	closeOnce     sync.Once
}

// NewSession launches a Chrome instance and returns a Session bound to it.
// The headless flag and window size come from cfg; the three interaction
// timeouts (page load, element wait, script) are fixed in cfg as well.
func NewSession(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	log := logger.Named("browser")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Sugar().Debugf(format, args...)
		}),
	)

	// Run with no actions forces the browser process to start now, so a
	// broken Chrome install fails fast instead of on the first record.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s := &Session{
		logger:        log,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}
	s.page = &Page{ctx: browserCtx, cfg: cfg, logger: log.Named("page")}

	log.Info("browser session started",
		zap.Bool("headless", cfg.Headless),
		zap.Duration("page_load_timeout", cfg.PageLoadTimeout),
		zap.Duration("element_timeout", cfg.ElementTimeout),
		zap.Duration("script_timeout", cfg.ScriptTimeout))
	return s, nil
}

// Page returns the interaction handle for this session.
func (s *Session) Page() *Page { return s.page }

// Close shuts the browser down and releases the allocator. It is idempotent
// and safe to call after a partial failure.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.logger.Info("closing browser session")
		if s.cancelBrowser != nil {
			s.cancelBrowser()
		}
		if s.cancelAlloc != nil {
			s.cancelAlloc()
		}
	})
}
