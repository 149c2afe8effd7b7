// internal/declaration/batch.go
// Processor is the top-level batch driver. Records are processed strictly
// sequentially in source order; one record's outcome never blocks another's
// except through the shared session, which is why a lookup timeout triggers
// re-authentication before the batch moves on.
package declaration

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rakanhl/declare-cli/internal/ui"
)

// Processor drives a full batch against one session.
type Processor struct {
	form     *Form
	recovery *Recovery
	opRetry  ui.Policy
	logger   *zap.Logger
}

// NewProcessor wires the batch driver. opRetry is the whole-record policy;
// the form carries its own field-level policy.
func NewProcessor(form *Form, recovery *Recovery, opRetry ui.Policy, logger *zap.Logger) *Processor {
	return &Processor{
		form:     form,
		recovery: recovery,
		opRetry:  opRetry,
		logger:   logger.Named("batch"),
	}
}

// Run processes every record from src and returns the batch summary.
//
// Exactly one terminal outcome is recorded per record with a non-empty
// reference id; blank ids are counted as skipped without any UI interaction.
// Per-record errors become outcomes and the batch continues; only a failed
// session recovery (or an unreadable source) aborts the run, in which case
// the partial summary is still returned.
func (p *Processor) Run(ctx context.Context, src DataSource) (*Summary, error) {
	batchID := uuid.New().String()
	log := p.logger.With(zap.String("batch_id", batchID))

	creds, err := src.Credentials()
	if err != nil {
		return &Summary{}, err
	}
	records, err := src.Records()
	if err != nil {
		return &Summary{}, err
	}
	log.Info("batch started", zap.Int("records", len(records)))

	summary := &Summary{}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		recLog := log.With(zap.Int("row", i+1), zap.String("reference_id", rec.ReferenceID))

		if strings.TrimSpace(rec.ReferenceID) == "" {
			summary.record(Outcome{ReferenceID: rec.ReferenceID, Status: StatusSkippedEmptyKey})
			recLog.Info("skipping record with empty reference id")
			continue
		}

		recLog.Info("processing record",
			zap.Int("processed", summary.Processed),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed+summary.TimedOut))

		err := ui.Do(ctx, p.opRetry, func(ctx context.Context) error {
			return p.form.Process(ctx, rec)
		})

		switch {
		case err == nil:
			summary.record(Outcome{ReferenceID: rec.ReferenceID, Status: StatusSucceeded})
			recLog.Info("record processed")

		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			summary.record(Outcome{ReferenceID: rec.ReferenceID, Status: StatusFailed, Err: err})
			return summary, err

		case isSearchTimeout(err):
			summary.record(Outcome{ReferenceID: rec.ReferenceID, Status: StatusTimedOut, Err: err})
			recLog.Warn("record lookup timed out, recovering session", zap.Error(err))
			if rerr := p.recovery.Recover(ctx, creds); rerr != nil {
				// A session that cannot be recovered makes every remaining
				// record unprocessable; abort with the partial summary.
				return summary, rerr
			}

		default:
			summary.record(Outcome{ReferenceID: rec.ReferenceID, Status: StatusFailed, Err: err})
			recLog.Error("record failed", zap.Error(err))
		}
	}

	log.Info("batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("timed_out", summary.TimedOut),
		zap.Int("failed", summary.Failed))
	return summary, nil
}
