// internal/declaration/batch_test.go
package declaration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	creds   Credentials
	shared  Context
	records []Record
}

func (s *fakeSource) Credentials() (Credentials, error) { return s.creds, nil }
func (s *fakeSource) Context() (Context, error)         { return s.shared, nil }
func (s *fakeSource) Records() ([]Record, error)        { return s.records, nil }

func newTestProcessor(page *fakePage, shared Context) *Processor {
	form := newTestForm(page, shared)
	auth := NewAuthenticator(page, 10*time.Millisecond, zap.NewNop())
	recovery := NewRecovery(page, auth, testLoginPolicy(), zap.NewNop())
	return NewProcessor(form, recovery, testOpPolicy(), zap.NewNop())
}

func statuses(s *Summary) []Status {
	out := make([]Status, len(s.Outcomes))
	for i, o := range s.Outcomes {
		out[i] = o.Status
	}
	return out
}

func TestEmptyReferenceIDSkipsAllUIInteraction(t *testing.T) {
	page := newFakePage(t)
	page.failEverything = true
	proc := newTestProcessor(page, testShared)

	src := &fakeSource{records: []Record{{ReferenceID: ""}, {ReferenceID: "   "}}}
	summary, err := proc.Run(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, []Status{StatusSkippedEmptyKey, StatusSkippedEmptyKey}, statuses(summary))
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Processed)
}

func TestAddBatchEndToEnd(t *testing.T) {
	page := newFakePage(t)
	proc := newTestProcessor(page, testShared)

	r1, r3 := testRecord, testRecord
	r1.ReferenceID = "A1"
	r3.ReferenceID = "A3"
	src := &fakeSource{records: []Record{r1, {ReferenceID: ""}, r3}}

	summary, err := proc.Run(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, []Status{StatusSucceeded, StatusSkippedEmptyKey, StatusSucceeded}, statuses(summary))
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.TimedOut)
	assert.Zero(t, page.reloads, "a clean batch must not trigger recovery")
}

func TestSearchTimeoutRecoversSessionAndContinues(t *testing.T) {
	shared := testShared
	shared.Action = ActionUpdate
	page := newFakePage(t)
	// Record 1 consumes one lookup wait; every later lookup wait times out,
	// covering all retry attempts for record 2.
	page.searchTimeoutFrom = 2
	proc := newTestProcessor(page, shared)

	r1, r2 := testRecord, testRecord
	r1.ReferenceID = "U1"
	r2.ReferenceID = "U2"
	src := &fakeSource{creds: Credentials{Username: "u", Password: "p"}, records: []Record{r1, r2}}

	summary, err := proc.Run(context.Background(), src)

	require.NoError(t, err, "a recovered timeout must not abort the batch")
	assert.Equal(t, []Status{StatusSucceeded, StatusTimedOut}, statuses(summary))
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.TimedOut)
	assert.Equal(t, 1, page.reloads, "exactly one recovery for one lookup timeout")
}

func TestFillPhaseTimeoutFailsRecordWithoutRecovery(t *testing.T) {
	shared := testShared
	shared.Action = ActionUpdate
	page := newFakePage(t)
	page.detailGridNeverAppears = true
	proc := newTestProcessor(page, shared)

	r := testRecord
	r.ReferenceID = "G1"
	src := &fakeSource{records: []Record{r}}

	summary, err := proc.Run(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, []Status{StatusFailed}, statuses(summary))
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.TimedOut)
	assert.Zero(t, page.reloads, "only a lookup timeout may trigger recovery")
	require.Error(t, summary.Outcomes[0].Err)
	assert.False(t, isSearchTimeout(summary.Outcomes[0].Err))
}

func TestFieldPopulationErrorFailsRecordAndContinues(t *testing.T) {
	page := newFakePage(t)
	page.selectOptions = map[string][]string{mailClass.ID: {"P (Priority)"}}
	proc := newTestProcessor(page, testShared)

	r1, r2 := testRecord, testRecord
	r1.ReferenceID = "F1"
	r2.ReferenceID = "F2"
	src := &fakeSource{records: []Record{r1, r2}}

	summary, err := proc.Run(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, []Status{StatusFailed, StatusFailed}, statuses(summary))
	assert.Equal(t, 2, summary.Failed)
	assert.Zero(t, page.reloads, "population errors never trigger recovery")
	for _, o := range summary.Outcomes {
		assert.Error(t, o.Err)
	}
}

func TestUnrecoverableSessionAbortsBatch(t *testing.T) {
	shared := testShared
	page := newFakePage(t)
	page.searchTimeoutFrom = 1
	page.loginAlwaysTimesOut = true
	proc := newTestProcessor(page, shared)

	r1, r2 := testRecord, testRecord
	r1.ReferenceID = "X1"
	r2.ReferenceID = "X2"
	src := &fakeSource{records: []Record{r1, r2}}

	summary, err := proc.Run(context.Background(), src)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session recovery failed")
	// The failed record's outcome is still recorded; the rest of the batch
	// is abandoned.
	assert.Equal(t, []Status{StatusTimedOut}, statuses(summary))
}

func TestCancelledContextStopsBetweenRecords(t *testing.T) {
	page := newFakePage(t)
	proc := newTestProcessor(page, testShared)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{records: []Record{{ReferenceID: "A1"}}}

	_, err := proc.Run(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}
