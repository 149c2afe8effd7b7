// internal/ui/popup.go
package ui

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// confirmButtonText is the one confirmation dialog the remote application is
// known to emit after state-changing actions. Any other dialog text is not
// recognized and is treated as absence.
const confirmButtonText = "Confirmar e continuar"

// PopupResolver dismisses interstitial confirmation dialogs. It is a probe,
// not a wait: when no dialog is present it returns within ProbeTimeout.
type PopupResolver struct {
	page   Page
	logger *zap.Logger

	// ProbeTimeout bounds each check for a dialog. Kept short so a clean
	// page costs at most one probe.
	ProbeTimeout time.Duration

	// Settle is the pause after dismissing a dialog, giving the UI time to
	// remove it before the next probe.
	Settle time.Duration
}

// NewPopupResolver returns a resolver with the stock 2s probe and 300ms
// settle timings.
func NewPopupResolver(page Page, logger *zap.Logger) *PopupResolver {
	return &PopupResolver{
		page:         page,
		logger:       logger.Named("popup"),
		ProbeTimeout: 2 * time.Second,
		Settle:       300 * time.Millisecond,
	}
}

// ResolveAll dismisses confirmation dialogs until none remain and returns the
// number dismissed, possibly zero. A probe timeout means "no dialog" and ends
// the loop; any other page error is returned along with the count so far.
func (r *PopupResolver) ResolveAll(ctx context.Context) (int, error) {
	button := ByButtonText(confirmButtonText)
	resolved := 0
	for {
		err := r.page.Await(ctx, button, Present, r.ProbeTimeout)
		if err != nil {
			if IsTimeout(err) {
				return resolved, nil
			}
			return resolved, err
		}

		if err := r.page.Click(ctx, button); err != nil {
			return resolved, err
		}
		resolved++
		r.logger.Debug("dismissed confirmation dialog", zap.Int("resolved", resolved))

		select {
		case <-ctx.Done():
			return resolved, ctx.Err()
		case <-time.After(r.Settle):
		}
	}
}
