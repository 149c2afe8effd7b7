// internal/browser/page.go
// chromedp-backed implementation of ui.Page. Every interaction re-resolves
// its target, so the stale-handle failure mode of long-lived element
// references cannot occur here; not-found and timeout conditions are mapped
// onto the shared ui error taxonomy instead.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/rakanhl/declare-cli/internal/config"
	"github.com/rakanhl/declare-cli/internal/ui"
)

// Page drives a single tab of the session's browser.
type Page struct {
	ctx    context.Context
	cfg    config.BrowserConfig
	logger *zap.Logger
}

var _ ui.Page = (*Page)(nil)

// run executes actions against the browser context under timeout, while
// still honoring cancellation of the caller's operational context.
func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the load to settle within the configured
// page-load timeout.
func (p *Page) Navigate(ctx context.Context, url string) error {
	p.logger.Debug("navigating", zap.String("url", url))
	if err := p.run(ctx, p.cfg.PageLoadTimeout, chromedp.Navigate(url)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("navigation to %s timed out after %v: %w", url, p.cfg.PageLoadTimeout, err)
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Reload re-fetches the current document.
func (p *Page) Reload(ctx context.Context) error {
	p.logger.Debug("reloading page")
	if err := p.run(ctx, p.cfg.PageLoadTimeout, chromedp.Reload()); err != nil {
		return fmt.Errorf("page reload failed: %w", err)
	}
	return nil
}

// Await polls target for cond at the shared interval until timeout. The
// probes are cheap DOM lookups, so an unresponsive page surfaces as a
// *ui.TimeoutError rather than a hung CDP call.
func (p *Page) Await(ctx context.Context, target ui.Target, cond ui.Condition, timeout time.Duration) error {
	expr, err := conditionExpr(target, cond)
	if err != nil {
		return err
	}
	return ui.Poll(ctx, target, cond, timeout, func(ctx context.Context) (bool, error) {
		var ok bool
		if err := p.run(ctx, p.cfg.ScriptTimeout, chromedp.Evaluate(expr, &ok)); err != nil {
			return false, fmt.Errorf("condition probe for %s failed: %w", target, err)
		}
		return ok, nil
	})
}

// Click activates target. For id targets this is a real input-event click;
// buttons located by text are clicked through the DOM, which is how the
// confirmation dialog's button behaves most reliably.
func (p *Page) Click(ctx context.Context, target ui.Target) error {
	if target.ID != "" {
		err := p.run(ctx, p.cfg.ElementTimeout, chromedp.Click("#"+target.ID, chromedp.ByQuery))
		return p.mapNodeErr(err, target)
	}

	expr := fmt.Sprintf(
		`(function(){const b=[...document.querySelectorAll("button")].find(b=>b.textContent.trim()===%s);if(!b)return false;b.click();return true})()`,
		strconv.Quote(target.Text))
	var clicked bool
	if err := p.run(ctx, p.cfg.ScriptTimeout, chromedp.Evaluate(expr, &clicked)); err != nil {
		return fmt.Errorf("clicking %s: %w", target, err)
	}
	if !clicked {
		return fmt.Errorf("%w: %s", ui.ErrNotFound, target)
	}
	return nil
}

// ClickFirstLink activates the first anchor inside target, the row-edit
// affordance of the remote detail grid.
func (p *Page) ClickFirstLink(ctx context.Context, target ui.Target) error {
	expr := fmt.Sprintf(
		`(function(){const g=document.getElementById(%s);if(!g)return false;const a=g.querySelector("a");if(!a)return false;a.click();return true})()`,
		strconv.Quote(target.ID))
	var clicked bool
	if err := p.run(ctx, p.cfg.ScriptTimeout, chromedp.Evaluate(expr, &clicked)); err != nil {
		return fmt.Errorf("clicking first link in %s: %w", target, err)
	}
	if !clicked {
		return fmt.Errorf("%w: no link inside %s", ui.ErrNotFound, target)
	}
	return nil
}

// Type appends text to the target input.
func (p *Page) Type(ctx context.Context, target ui.Target, text string) error {
	err := p.run(ctx, p.cfg.ElementTimeout, chromedp.SendKeys("#"+target.ID, text, chromedp.ByQuery))
	return p.mapNodeErr(err, target)
}

// Clear empties the target input.
func (p *Page) Clear(ctx context.Context, target ui.Target) error {
	err := p.run(ctx, p.cfg.ElementTimeout, chromedp.Clear("#"+target.ID, chromedp.ByQuery))
	return p.mapNodeErr(err, target)
}

// Value returns the current value of the target input.
func (p *Page) Value(ctx context.Context, target ui.Target) (string, error) {
	var value string
	err := p.run(ctx, p.cfg.ElementTimeout, chromedp.Value("#"+target.ID, &value, chromedp.ByQuery))
	if err != nil {
		return "", p.mapNodeErr(err, target)
	}
	return value, nil
}

// SelectByText chooses the option whose visible text equals label and fires
// the change event the remote form's postbacks hang off. A missing option is
// a population error, not a transient miss.
func (p *Page) SelectByText(ctx context.Context, target ui.Target, label string) error {
	expr := fmt.Sprintf(
		`(function(){const s=document.getElementById(%s);if(!s)return "missing";const i=[...s.options].findIndex(o=>o.textContent.trim()===%s);if(i<0)return "nooption";s.selectedIndex=i;s.dispatchEvent(new Event("change",{bubbles:true}));return "ok"})()`,
		strconv.Quote(target.ID), strconv.Quote(label))
	var result string
	if err := p.run(ctx, p.cfg.ScriptTimeout, chromedp.Evaluate(expr, &result)); err != nil {
		return fmt.Errorf("selecting in %s: %w", target, err)
	}
	switch result {
	case "ok":
		return nil
	case "missing":
		return fmt.Errorf("%w: %s", ui.ErrNotFound, target)
	default:
		return &ui.FieldError{Field: target, Value: label, Err: errors.New("select has no option with that text")}
	}
}

// ScrollIntoView brings target into the viewport. The remote layout places
// some fields below the fold and refuses interaction until they are visible.
func (p *Page) ScrollIntoView(ctx context.Context, target ui.Target) error {
	err := p.run(ctx, p.cfg.ElementTimeout, chromedp.ScrollIntoView("#"+target.ID, chromedp.ByQuery))
	return p.mapNodeErr(err, target)
}

// Script evaluates js and discards the result.
func (p *Page) Script(ctx context.Context, js string) error {
	if err := p.run(ctx, p.cfg.ScriptTimeout, chromedp.Evaluate(js, nil)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// mapNodeErr translates chromedp failures into the shared taxonomy. A
// deadline on a node-bound action means the element never appeared within
// the element timeout, the devtools equivalent of not-found.
func (p *Page) mapNodeErr(err error, target ui.Target) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ui.ErrNotFound, target)
	}
	return fmt.Errorf("interacting with %s: %w", target, err)
}

// conditionExpr builds the DOM probe for a target/condition pair.
func conditionExpr(target ui.Target, cond ui.Condition) (string, error) {
	var locate string
	if target.ID != "" {
		locate = fmt.Sprintf(`document.getElementById(%s)`, strconv.Quote(target.ID))
	} else {
		locate = fmt.Sprintf(`[...document.querySelectorAll("button")].find(b=>b.textContent.trim()===%s)||null`, strconv.Quote(target.Text))
	}

	switch cond {
	case ui.Present:
		return fmt.Sprintf(`(function(){const e=%s;return !!e&&!!(e.offsetParent||e.getClientRects().length)})()`, locate), nil
	case ui.Clickable:
		return fmt.Sprintf(`(function(){const e=%s;return !!e&&!e.disabled&&!!(e.offsetParent||e.getClientRects().length)})()`, locate), nil
	case ui.Absent:
		return fmt.Sprintf(`(function(){return (%s)===null})()`, locate), nil
	default:
		return "", fmt.Errorf("unknown wait condition %q", cond)
	}
}
