package domain

import "time"

const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPaid    = "PAID"
	// InvoiceStatusExpired is only ever derived at read time, never stored.
	InvoiceStatusExpired = "EXPIRED"
)

// InvoiceTTL is the lifetime of an unpaid invoice.
const InvoiceTTL = 3600 * time.Second

// MinTxHashLength is the shortest transaction hash accepted by the default verifier.
const MinTxHashLength = 10

// PaymentIDPrefix marks identifiers minted by the invoice manager.
const PaymentIDPrefix = "pay_"
