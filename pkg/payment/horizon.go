package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HorizonVerifier looks a transaction up on a Stellar Horizon server and
// accepts it only if Horizon reports it as successful.
type HorizonVerifier struct {
	BaseURL   string
	MinLength int
	client    *http.Client
}

func NewHorizonVerifier(baseURL string, minLength int, timeout time.Duration) *HorizonVerifier {
	if baseURL == "" {
		baseURL = "https://horizon.stellar.org"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HorizonVerifier{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		MinLength: minLength,
		client:    &http.Client{Timeout: timeout},
	}
}

// maxHorizonBody caps how much of a Horizon response is read.
const maxHorizonBody = 1 << 20

type horizonTransaction struct {
	Hash       string `json:"hash"`
	Successful bool   `json:"successful"`
	Ledger     int64  `json:"ledger"`
}

func (v *HorizonVerifier) VerifyTransaction(ctx context.Context, txHash string) error {
	if len(txHash) < v.MinLength {
		return fmt.Errorf("%w: hash shorter than %d characters", ErrInvalidTx, v.MinLength)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL+"/transactions/"+url.PathEscape(txHash), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("horizon lookup: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHorizonBody))
	if err != nil {
		return fmt.Errorf("horizon read: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: transaction %s not found", ErrInvalidTx, txHash)
	case resp.StatusCode != http.StatusOK:
		log.Printf("[Horizon] lookup tx=%s status=%d body=%s", txHash, resp.StatusCode, string(body))
		return fmt.Errorf("horizon lookup: %d", resp.StatusCode)
	}
	var tx horizonTransaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return fmt.Errorf("horizon decode: %w", err)
	}
	if !tx.Successful {
		return fmt.Errorf("%w: transaction %s failed on ledger %d", ErrInvalidTx, txHash, tx.Ledger)
	}
	return nil
}
