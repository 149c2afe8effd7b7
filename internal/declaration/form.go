// internal/declaration/form.go
// Form turns one record plus the batch context into the ordered field-set
// sequence the remote declaration page expects. The order mirrors the remote
// form's tab order and must not be shuffled: several fields trigger
// postbacks that re-render the ones after them.
package declaration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rakanhl/declare-cli/internal/ui"
)

// phase tags where inside record processing an error surfaced. The batch
// driver escalates lookup timeouts to session recovery; everything else
// stays a per-record failure.
type phase string

const (
	phaseSearch phase = "search"
	phaseFill   phase = "fill"
	phaseSubmit phase = "submit"
)

type stepError struct {
	phase phase
	err   error
}

func (e *stepError) Error() string { return fmt.Sprintf("%s: %v", e.phase, e.err) }
func (e *stepError) Unwrap() error { return e.err }

// isSearchTimeout reports whether err is, at bottom, an expired wait from
// the record-lookup step, the signal that the session is in an unknown or
// unresponsive state.
func isSearchTimeout(err error) bool {
	var se *stepError
	return errors.As(err, &se) && se.phase == phaseSearch && ui.IsTimeout(se.err)
}

// Form executes the per-record workflow against the remote page.
type Form struct {
	page   ui.Page
	popups *ui.PopupResolver
	shared Context
	logger *zap.Logger

	// fieldRetry absorbs element-level races on individual field steps.
	fieldRetry ui.Policy
	// waitTimeout bounds ordinary element waits; the initial lookup wait
	// gets twice that, since it follows a full page round trip.
	waitTimeout time.Duration
}

// NewForm builds a Form for one batch run.
func NewForm(page ui.Page, popups *ui.PopupResolver, shared Context, fieldRetry ui.Policy, waitTimeout time.Duration, logger *zap.Logger) *Form {
	return &Form{
		page:        page,
		popups:      popups,
		shared:      shared,
		fieldRetry:  fieldRetry,
		waitTimeout: waitTimeout,
		logger:      logger.Named("form"),
	}
}

// Process locates rec on the remote page and executes the sequence for the
// batch action. On error the remote form may be left partially filled; the
// caller records the failure and moves on, it does not roll back.
func (f *Form) Process(ctx context.Context, rec Record) error {
	log := f.logger.With(zap.String("reference_id", rec.ReferenceID), zap.String("action", string(f.shared.Action)))
	log.Debug("locating record")

	if err := f.search(ctx, rec.ReferenceID); err != nil {
		return &stepError{phase: phaseSearch, err: err}
	}

	switch f.shared.Action {
	case ActionAdd:
		return f.fillAndStore(ctx, rec)
	case ActionUpdate:
		if err := f.openDetailRow(ctx); err != nil {
			return &stepError{phase: phaseFill, err: err}
		}
		return f.fillAndStore(ctx, rec)
	case ActionDelete:
		if err := f.openDetailRow(ctx); err != nil {
			return &stepError{phase: phaseFill, err: err}
		}
		return f.eliminate(ctx)
	default:
		return &stepError{phase: phaseFill, err: fmt.Errorf("unsupported action %q", f.shared.Action)}
	}
}

// search enters the reference id and activates the lookup. A timeout on the
// very first wait is the one condition the batch driver treats as session
// loss rather than a record failure.
func (f *Form) search(ctx context.Context, referenceID string) error {
	if err := f.page.Await(ctx, searchItemID, ui.Clickable, 2*f.waitTimeout); err != nil {
		return err
	}

	if err := ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
		if err := f.page.Clear(ctx, searchItemID); err != nil {
			return err
		}
		return f.page.Type(ctx, searchItemID, referenceID)
	}); err != nil {
		return err
	}

	if err := ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
		return f.page.Click(ctx, searchOK)
	}); err != nil {
		return err
	}

	resolved, err := f.popups.ResolveAll(ctx)
	if err != nil {
		return err
	}
	if resolved > 0 {
		// Dismissing a dialog reloads the lookup panel; wait for it to come
		// back before the field sequence starts.
		if err := f.page.Await(ctx, searchItemID, ui.Present, f.waitTimeout); err != nil {
			return err
		}
	}
	return nil
}

// openDetailRow activates the row-edit affordance, the first link in the
// record's detail grid, turning the read-only view into an editable form.
func (f *Form) openDetailRow(ctx context.Context) error {
	if err := f.page.Await(ctx, detailGrid, ui.Present, f.waitTimeout); err != nil {
		return err
	}
	return ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
		return f.page.ClickFirstLink(ctx, detailGrid)
	})
}

// fillAndStore populates every field in the remote form's tab order and
// submits with the "final store, automatic transfer" action.
func (f *Form) fillAndStore(ctx context.Context, rec Record) error {
	sh := f.shared
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"partner country", f.typeInto(partnerCountry, sh.DestinationCountry)},
		{"partner post", f.typeInto(partnerPost, sh.DestinationPostalCode)},
		{"mail class", f.selectOption(mailClass, sh.MailClass)},
		{"handling class", f.selectOption(handlingClass, handlingClassNormal)},

		{"sender name", f.typeInto(senderName, sh.SenderName)},
		{"sender address 1", f.typeInto(senderAddress1, sh.SenderAddress1)},
		{"sender address 2", f.typeInto(senderAddress2, sh.SenderAddress2)},
		{"sender city", f.typeInto(senderCity, sh.SenderCity)},
		{"sender state", f.typeInto(senderState, sh.SenderState)},
		{"sender country", f.replaceText(senderCountry, sh.SenderCountry)},
		{"sender telephone", f.typeInto(senderTelephone, sh.SenderTelephone)},
		{"nature of goods", f.typeInto(natureType, sh.NatureOfGoods)},

		{"recipient name", f.typeInto(recipientName, rec.RecipientName)},
		{"recipient address 1", f.typeInto(recipientAddress1, rec.RecipientAddress1)},
		{"recipient address 2", f.typeInto(recipientAddress2, rec.RecipientAddress2)},
		{"recipient postal code", f.typeInto(recipientZIP, rec.RecipientPostalCode)},
		{"recipient city", f.typeInto(recipientCity, rec.RecipientCity)},
		{"recipient state", f.typeInto(recipientState, rec.RecipientState)},
		{"recipient country", f.replaceText(recipientCountry, rec.RecipientCountry)},
		{"recipient email", f.typeInto(recipientEmail, rec.RecipientEmail)},
		{"recipient telephone", f.typeInto(recipientTelephone, rec.RecipientTelephone)},

		{"item quantity", f.typeInto(itemQuantity, rec.Quantity)},
		{"item description", f.typeInto(itemDescription, rec.ItemDescription)},
		{"item net weight", f.typeInto(itemNetWeight, rec.NetWeight)},
		{"item value", f.typeInto(itemValue, rec.DeclaredValue)},
		{"item currency", f.replaceText(itemCurrency, rec.Currency)},

		{"gross weight", func(ctx context.Context) error { return f.fillGrossWeight(ctx, rec.NetWeight) }},
		{"postage amount", f.fillPostage(sh.PostageAmount)},
		{"postage currency", f.replaceText(postageCurrency, sh.PostageCurrency)},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return &stepError{phase: phaseFill, err: fmt.Errorf("%s: %w", step.name, err)}
		}
	}

	return f.store(ctx, actionStoreFinal)
}

// eliminate submits the opened record with the delete action; no field
// population occurs.
func (f *Form) eliminate(ctx context.Context) error {
	return f.store(ctx, actionEliminate)
}

// store selects the requested action option, activates the store button, and
// clears any confirmation dialogs the submission raises.
func (f *Form) store(ctx context.Context, option string) error {
	if err := f.selectOption(actionSelect, option)(ctx); err != nil {
		return &stepError{phase: phaseSubmit, err: err}
	}
	if err := ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
		return f.page.Click(ctx, storeButton)
	}); err != nil {
		return &stepError{phase: phaseSubmit, err: err}
	}
	if _, err := f.popups.ResolveAll(ctx); err != nil {
		return &stepError{phase: phaseSubmit, err: err}
	}
	return nil
}

// typeInto appends value to target under the field retry policy.
func (f *Form) typeInto(target ui.Target, value string) func(context.Context) error {
	return func(ctx context.Context) error {
		return ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
			return f.page.Type(ctx, target, value)
		})
	}
}

// replaceText clears target before re-entering value. Used for fields the
// remote page pre-populates (countries, currencies).
func (f *Form) replaceText(target ui.Target, value string) func(context.Context) error {
	return func(ctx context.Context) error {
		return ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
			if err := f.page.Clear(ctx, target); err != nil {
				return err
			}
			return f.page.Type(ctx, target, value)
		})
	}
}

// selectOption picks the option with the given visible text. A missing
// option is a non-retryable population error and propagates through the
// field policy untouched.
func (f *Form) selectOption(target ui.Target, label string) func(context.Context) error {
	return func(ctx context.Context) error {
		return ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
			return f.page.SelectByText(ctx, target, label)
		})
	}
}

// fillGrossWeight sets the gross weight only when the field is empty; an
// existing value, whether remote or operator-entered, is never overwritten.
func (f *Form) fillGrossWeight(ctx context.Context, netWeight string) error {
	return ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
		current, err := f.page.Value(ctx, grossWeight)
		if err != nil {
			return err
		}
		if current != "" {
			return nil
		}
		return f.page.Type(ctx, grossWeight, netWeight)
	})
}

// fillPostage scrolls the postage field into view before interacting; the
// remote layout may place it below the fold.
func (f *Form) fillPostage(amount string) func(context.Context) error {
	return func(ctx context.Context) error {
		return ui.Do(ctx, f.fieldRetry, func(ctx context.Context) error {
			if err := f.page.ScrollIntoView(ctx, postageAmount); err != nil {
				return err
			}
			if err := f.page.Clear(ctx, postageAmount); err != nil {
				return err
			}
			return f.page.Type(ctx, postageAmount, amount)
		})
	}
}
