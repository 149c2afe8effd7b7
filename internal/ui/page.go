// internal/ui/page.go
package ui

import (
	"context"
	"time"
)

// Target identifies an element on the remote page. Exactly one of the two
// locators is set: ID matches an element id attribute, Text matches the
// visible text of a button.
type Target struct {
	ID   string
	Text string
}

// ByID locates an element by its id attribute.
func ByID(id string) Target { return Target{ID: id} }

// ByButtonText locates a button by its exact visible text.
func ByButtonText(text string) Target { return Target{Text: text} }

func (t Target) String() string {
	if t.ID != "" {
		return "#" + t.ID
	}
	return "button[" + t.Text + "]"
}

// Condition names a waitable element state.
type Condition string

const (
	// Present: the element exists and is visible.
	Present Condition = "present"
	// Clickable: the element is visible and not disabled.
	Clickable Condition = "clickable"
	// Absent: the element does not exist in the document.
	Absent Condition = "absent"
)

// Page is the surface the record pipeline drives. The production
// implementation is backed by a Chrome DevTools session; tests substitute
// in-memory fakes. Every method takes the operational context and returns the
// taxonomy errors from errors.go so that retry classification stays uniform.
type Page interface {
	// Navigate loads url and blocks until the page load settles or the
	// configured page-load timeout expires.
	Navigate(ctx context.Context, url string) error

	// Reload re-fetches the current document.
	Reload(ctx context.Context) error

	// Await blocks until target satisfies cond, polling at a fixed short
	// interval, or fails with *TimeoutError once timeout elapses.
	Await(ctx context.Context, target Target, cond Condition, timeout time.Duration) error

	// Click activates target.
	Click(ctx context.Context, target Target) error

	// ClickFirstLink activates the first anchor element inside target.
	ClickFirstLink(ctx context.Context, target Target) error

	// Type appends text to the target input.
	Type(ctx context.Context, target Target, text string) error

	// Clear empties the target input.
	Clear(ctx context.Context, target Target) error

	// Value returns the current value of the target input.
	Value(ctx context.Context, target Target) (string, error)

	// SelectByText chooses the option of a select control whose visible text
	// equals label. A missing option is a *FieldError, not a retryable miss.
	SelectByText(ctx context.Context, target Target, label string) error

	// ScrollIntoView brings target into the viewport.
	ScrollIntoView(ctx context.Context, target Target) error

	// Script evaluates a fragment of JavaScript, discarding the result.
	Script(ctx context.Context, js string) error
}
