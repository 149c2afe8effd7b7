// internal/declaration/record.go
// Domain model for one batch run. Everything here is opaque text taken from
// the spreadsheet; the remote application owns all business validation.
package declaration

import "fmt"

// Action selects which form sequence a batch executes.
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// ParseAction validates the action code read from the spreadsheet.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAdd, ActionUpdate, ActionDelete:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action %q, expected ADD, UPDATE or DELETE", s)
	}
}

// Credentials authenticate against the remote application.
type Credentials struct {
	Username string
	Password string
	URL      string
}

// Record is one declaration entry, keyed by its reference identifier.
// Records are built once per batch row and read-only afterwards.
type Record struct {
	ReferenceID string

	RecipientName       string
	RecipientAddress1   string
	RecipientAddress2   string
	RecipientCity       string
	RecipientState      string
	RecipientPostalCode string
	RecipientCountry    string
	RecipientTelephone  string
	RecipientEmail      string

	ItemDescription string
	Quantity        string
	NetWeight       string
	DeclaredValue   string
	Currency        string
}

// Context is the batch-scoped shared data: sender identity, shipping
// metadata, and the requested action. Loaded once, never mutated during a
// run.
type Context struct {
	SenderName      string
	SenderAddress1  string
	SenderAddress2  string
	SenderCity      string
	SenderState     string
	SenderCountry   string
	SenderTelephone string

	DestinationCountry    string
	DestinationPostalCode string
	MailClass             string
	// OriginCountry is carried from the spreadsheet but not entered into any
	// form field; the remote application derives it from the account.
	OriginCountry   string
	NatureOfGoods   string
	PostageAmount   string
	PostageCurrency string

	Action Action
}

// DataSource supplies a batch's inputs. The spreadsheet layout (sheet names,
// row and column offsets) is the implementation's contract, not this
// package's.
type DataSource interface {
	// Credentials returns the login triple for the remote application.
	Credentials() (Credentials, error)
	// Context returns the batch-scoped shared data.
	Context() (Context, error)
	// Records returns the declaration rows in source order. Reading stops at
	// the first fully empty row; rows with only a blank reference id are
	// still returned and skipped later.
	Records() ([]Record, error)
}
