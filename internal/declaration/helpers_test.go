// internal/declaration/helpers_test.go
// In-memory ui.Page fake shared by the form, batch, and recovery tests. It
// records every interaction as a compact op string so tests can assert on
// exact call sequences.
package declaration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rakanhl/declare-cli/internal/ui"
)

type fakePage struct {
	mu    sync.Mutex
	t     *testing.T
	calls []string

	// values holds input values returned by Value, keyed by element id.
	values map[string]string

	// selectOptions restricts the options of a select; nil means any label
	// is accepted. Keyed by element id.
	selectOptions map[string][]string

	// searchTimeoutFrom makes the Nth and later lookup waits (Await on the
	// item-id field with the clickable condition) expire. Zero disables.
	searchTimeoutFrom int
	searchWaits       int

	// loginAlwaysTimesOut makes the post-login landing wait expire.
	loginAlwaysTimesOut bool

	// detailGridNeverAppears makes every wait for the record detail grid
	// expire, simulating a row that never renders after the lookup.
	detailGridNeverAppears bool

	// failEverything trips the test on any interaction at all.
	failEverything bool

	reloads int
}

func newFakePage(t *testing.T) *fakePage {
	return &fakePage{t: t, values: map[string]string{}}
}

func (f *fakePage) guard(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEverything {
		f.t.Fatalf("unexpected UI interaction: %s", op)
	}
	f.calls = append(f.calls, op)
}

func (f *fakePage) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePage) Navigate(ctx context.Context, url string) error {
	f.guard("navigate:" + url)
	return nil
}

func (f *fakePage) Reload(ctx context.Context) error {
	f.guard("reload")
	f.mu.Lock()
	f.reloads++
	f.mu.Unlock()
	return nil
}

func (f *fakePage) Await(ctx context.Context, target ui.Target, cond ui.Condition, timeout time.Duration) error {
	// Dialog probes always time out: the fake page never shows popups.
	if target.Text != "" {
		return &ui.TimeoutError{Target: target, Condition: cond, Timeout: timeout}
	}
	f.guard(fmt.Sprintf("await:%s:%s", target.ID, cond))

	if target == searchItemID && cond == ui.Clickable {
		f.mu.Lock()
		f.searchWaits++
		expired := f.searchTimeoutFrom > 0 && f.searchWaits >= f.searchTimeoutFrom
		f.mu.Unlock()
		if expired {
			return &ui.TimeoutError{Target: target, Condition: cond, Timeout: timeout}
		}
	}
	if f.loginAlwaysTimesOut && target == searchItemID && cond == ui.Present {
		return &ui.TimeoutError{Target: target, Condition: cond, Timeout: timeout}
	}
	if f.detailGridNeverAppears && target == detailGrid {
		return &ui.TimeoutError{Target: target, Condition: cond, Timeout: timeout}
	}
	return nil
}

func (f *fakePage) Click(ctx context.Context, target ui.Target) error {
	f.guard("click:" + target.ID)
	return nil
}

func (f *fakePage) ClickFirstLink(ctx context.Context, target ui.Target) error {
	f.guard("clicklink:" + target.ID)
	return nil
}

func (f *fakePage) Type(ctx context.Context, target ui.Target, text string) error {
	f.guard(fmt.Sprintf("type:%s:%s", target.ID, text))
	return nil
}

func (f *fakePage) Clear(ctx context.Context, target ui.Target) error {
	f.guard("clear:" + target.ID)
	return nil
}

func (f *fakePage) Value(ctx context.Context, target ui.Target) (string, error) {
	f.guard("value:" + target.ID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[target.ID], nil
}

func (f *fakePage) SelectByText(ctx context.Context, target ui.Target, label string) error {
	f.guard(fmt.Sprintf("select:%s:%s", target.ID, label))
	f.mu.Lock()
	options, restricted := f.selectOptions[target.ID]
	f.mu.Unlock()
	if !restricted {
		return nil
	}
	for _, o := range options {
		if o == label {
			return nil
		}
	}
	return &ui.FieldError{Field: target, Value: label, Err: fmt.Errorf("select has no option with that text")}
}

func (f *fakePage) ScrollIntoView(ctx context.Context, target ui.Target) error {
	f.guard("scroll:" + target.ID)
	return nil
}

func (f *fakePage) Script(ctx context.Context, js string) error {
	f.guard("script")
	return nil
}

// Fast policies so tests never sleep for real.
func testFieldPolicy() ui.Policy {
	return ui.Policy{MaxAttempts: 3, Delay: time.Millisecond}
}

func testOpPolicy() ui.Policy {
	return ui.Policy{MaxAttempts: 3, Delay: time.Millisecond, Classify: func(err error) bool {
		return ui.IsRetryable(err) || ui.IsTimeout(err)
	}}
}

func testLoginPolicy() ui.Policy {
	return ui.Policy{MaxAttempts: 3, Delay: time.Millisecond, Grow: true, Classify: func(error) bool { return true }}
}
