package billing

import "errors"

var (
	// ErrMissingDateColumn is returned when no date-role alias is present.
	ErrMissingDateColumn = errors.New("no date column found (expected one of: date, invoice_date, billing_date, transaction_date)")
	// ErrMissingAmountColumn is returned when no amount-role alias is present.
	ErrMissingAmountColumn = errors.New("no amount column found (expected one of: amount, amount_billed, total_amount, price)")
	// ErrMergeColumnMismatch is returned when the column intersection of two
	// tables no longer carries a usable date or amount column.
	ErrMergeColumnMismatch = errors.New("merged tables share no usable date and amount columns")
)
