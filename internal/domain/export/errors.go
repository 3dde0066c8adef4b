package export

import "errors"

// Sentinel kinds for export errors. ErrNoRecords and ErrMissingDate are
// precondition failures: nothing is produced.
var (
	ErrNoRecords     = errors.New("no records to export")
	ErrMissingDate   = errors.New("match date is required for export")
	ErrUnknownLocale = errors.New("unknown export locale")
	ErrMalformedCSV  = errors.New("malformed scoresheet csv")
)
