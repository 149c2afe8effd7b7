// internal/declaration/outcome.go
package declaration

import "fmt"

// Status is the terminal classification of one record's processing.
type Status int

const (
	// StatusSucceeded: the record reached its new persisted state remotely.
	StatusSucceeded Status = iota
	// StatusSkippedEmptyKey: the record had no reference id and no UI
	// interaction was attempted.
	StatusSkippedEmptyKey
	// StatusTimedOut: the record lookup timed out and the session was
	// recovered; the record was not retried this run.
	StatusTimedOut
	// StatusFailed: an unrecoverable per-record error; the remote form may
	// be left partially filled and is surfaced only through the log.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkippedEmptyKey:
		return "skipped_empty_key"
	case StatusTimedOut:
		return "timed_out"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the terminal result recorded for one record. Exactly one is
// recorded per record with a non-empty reference id.
type Outcome struct {
	ReferenceID string
	Status      Status
	Err         error
}

// Summary accumulates batch counters. Outcomes preserves source order.
type Summary struct {
	Processed int
	Skipped   int
	TimedOut  int
	Failed    int
	Outcomes  []Outcome
}

func (s *Summary) record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusSucceeded:
		s.Processed++
	case StatusSkippedEmptyKey:
		s.Skipped++
	case StatusTimedOut:
		s.TimedOut++
	case StatusFailed:
		s.Failed++
	}
}
