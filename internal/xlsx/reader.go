// internal/xlsx/reader.go
// Spreadsheet-backed DataSource. The workbook layout is a fixed contract:
// sheet "Other" carries credentials (row 2), the shared sender/shipping
// context (row 5) and the action code (row 8, column C); sheet "Data"
// carries one record per row starting at row 2.
package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rakanhl/declare-cli/internal/declaration"
)

const (
	sheetOther = "Other"
	sheetData  = "Data"

	// Zero-based row offsets inside sheet "Other".
	credentialsRow = 1
	contextRow     = 4
	actionRow      = 7

	// Zero-based column offsets inside sheet "Data".
	colReferenceID        = 3
	colRecipientAddress1  = 5
	colRecipientAddress2  = 6
	colRecipientCity      = 7
	colRecipientState     = 8
	colRecipientPostCode  = 9
	colRecipientCountry   = 10
	colRecipientName      = 11
	colRecipientTelephone = 12
	colRecipientEmail     = 13
	colItemDescription    = 16
	colQuantity           = 17
	colCurrency           = 19
	colNetWeight          = 20
	colDeclaredValue      = 21
)

// Reader exposes one workbook as a declaration.DataSource.
type Reader struct {
	f      *excelize.File
	logger *zap.Logger
}

var _ declaration.DataSource = (*Reader)(nil)

// Open loads the workbook at path and verifies both required sheets exist.
func Open(path string, logger *zap.Logger) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	for _, sheet := range []string{sheetOther, sheetData} {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil || idx < 0 {
			f.Close()
			return nil, fmt.Errorf("workbook %s is missing sheet %q", path, sheet)
		}
	}
	return &Reader{f: f, logger: logger.Named("xlsx")}, nil
}

// Close releases the workbook.
func (r *Reader) Close() error { return r.f.Close() }

// Credentials reads the login triple from sheet "Other".
func (r *Reader) Credentials() (declaration.Credentials, error) {
	return declaration.Credentials{
		Username: r.cell(sheetOther, 0, credentialsRow),
		Password: r.cell(sheetOther, 1, credentialsRow),
		URL:      r.cell(sheetOther, 2, credentialsRow),
	}, nil
}

// Context reads the batch-scoped shared data and the action code.
func (r *Reader) Context() (declaration.Context, error) {
	action, err := declaration.ParseAction(r.cell(sheetOther, 2, actionRow))
	if err != nil {
		return declaration.Context{}, err
	}
	return declaration.Context{
		DestinationCountry:    r.cell(sheetOther, 0, contextRow),
		DestinationPostalCode: r.cell(sheetOther, 1, contextRow),
		SenderName:            r.cell(sheetOther, 2, contextRow),
		SenderAddress1:        r.cell(sheetOther, 3, contextRow),
		SenderAddress2:        r.cell(sheetOther, 4, contextRow),
		SenderCity:            r.cell(sheetOther, 5, contextRow),
		SenderState:           r.cell(sheetOther, 6, contextRow),
		SenderTelephone:       r.cell(sheetOther, 7, contextRow),
		SenderCountry:         r.cell(sheetOther, 8, contextRow),
		MailClass:             r.cell(sheetOther, 9, contextRow),
		OriginCountry:         r.cell(sheetOther, 10, contextRow),
		NatureOfGoods:         r.cell(sheetOther, 11, contextRow),
		PostageAmount:         r.cell(sheetOther, 12, contextRow),
		PostageCurrency:       r.cell(sheetOther, 13, contextRow),
		Action:                action,
	}, nil
}

// Records reads declaration rows in order. A fully empty row terminates
// reading; rows with a blank reference id are returned as-is so the batch
// driver can count them as skipped.
func (r *Reader) Records() ([]declaration.Record, error) {
	rows, err := r.f.GetRows(sheetData)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetData, err)
	}

	var records []declaration.Record
	for i := 1; i < len(rows); i++ {
		if rowEmpty(rows[i]) {
			break
		}
		records = append(records, declaration.Record{
			ReferenceID:         r.cell(sheetData, colReferenceID, i),
			RecipientAddress1:   r.cell(sheetData, colRecipientAddress1, i),
			RecipientAddress2:   r.cell(sheetData, colRecipientAddress2, i),
			RecipientCity:       r.cell(sheetData, colRecipientCity, i),
			RecipientState:      r.cell(sheetData, colRecipientState, i),
			RecipientPostalCode: r.cell(sheetData, colRecipientPostCode, i),
			RecipientCountry:    r.cell(sheetData, colRecipientCountry, i),
			RecipientName:       r.cell(sheetData, colRecipientName, i),
			RecipientTelephone:  r.cell(sheetData, colRecipientTelephone, i),
			RecipientEmail:      r.cell(sheetData, colRecipientEmail, i),
			ItemDescription:     r.cell(sheetData, colItemDescription, i),
			Quantity:            r.cell(sheetData, colQuantity, i),
			Currency:            r.cell(sheetData, colCurrency, i),
			NetWeight:           r.cell(sheetData, colNetWeight, i),
			DeclaredValue:       r.cell(sheetData, colDeclaredValue, i),
		})
	}
	r.logger.Debug("records read", zap.Int("count", len(records)))
	return records, nil
}

// cell returns the typed text of the cell at zero-based (col, row).
// Recognized kinds: string, number (three-decimal format, trailing zeros
// trimmed), boolean, and formula-as-literal-text. Anything else is "".
func (r *Reader) cell(sheet string, col, row int) string {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return ""
	}

	// Formula cells carry the formula text; the cell type alone does not
	// identify them reliably, so probe for a formula first.
	if formula, err := r.f.GetCellFormula(sheet, axis); err == nil && formula != "" {
		return formula
	}

	ctype, err := r.f.GetCellType(sheet, axis)
	if err != nil {
		return ""
	}
	switch ctype {
	case excelize.CellTypeFormula:
		return ""
	case excelize.CellTypeBool:
		raw, err := r.f.GetCellValue(sheet, axis)
		if err != nil {
			return ""
		}
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return ""
		}
		return strconv.FormatBool(b)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		raw, err := r.f.GetCellValue(sheet, axis)
		if err != nil {
			return ""
		}
		return raw
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		raw, err := r.f.GetCellValue(sheet, axis)
		if err != nil || raw == "" {
			return ""
		}
		if v, perr := strconv.ParseFloat(raw, 64); perr == nil {
			return formatDecimal(v)
		}
		// Untyped cells occasionally hold plain text.
		return raw
	default:
		return ""
	}
}

// rowEmpty reports whether every cell of a raw sheet row is blank.
func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// formatDecimal renders v with at most three decimal places and no trailing
// zeros, matching the remote form's expectations for weights and amounts.
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
