package importer

import "errors"

// Structural failures. A document that fails with one of these yields no items.
var (
	ErrMalformed   = errors.New("malformed spreadsheet document")
	ErrNoWorksheet = errors.New("no worksheet found")
	ErrNoTable     = errors.New("no table found")
)

// StructureError reports a document that cannot be read as a ledger sheet.
// Row and field problems never produce one; they drop the row or degrade the field.
type StructureError struct {
	Format string
	Reason error // one of ErrMalformed, ErrNoWorksheet, ErrNoTable
	Cause  error // underlying decoder error, if any
}

func (e *StructureError) Error() string {
	msg := e.Format + ": " + e.Reason.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StructureError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Cause}
}
