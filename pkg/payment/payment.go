package payment

import (
	"context"
	"errors"
)

// ErrInvalidTx is returned when a transaction reference cannot be accepted
// as proof of payment.
var ErrInvalidTx = errors.New("invalid transaction")

// Verifier checks a submitted transaction hash before an invoice is marked paid.
type Verifier interface {
	VerifyTransaction(ctx context.Context, txHash string) error
}
