package payment

import (
	"context"
	"fmt"
)

// LengthVerifier only checks that the hash is at least MinLength characters.
// It stands in for on-chain verification during development.
type LengthVerifier struct {
	MinLength int
}

func NewLengthVerifier(minLength int) *LengthVerifier {
	return &LengthVerifier{MinLength: minLength}
}

func (v *LengthVerifier) VerifyTransaction(_ context.Context, txHash string) error {
	if len(txHash) < v.MinLength {
		return fmt.Errorf("%w: hash shorter than %d characters", ErrInvalidTx, v.MinLength)
	}
	return nil
}
