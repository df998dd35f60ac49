package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLengthVerifier(t *testing.T) {
	v := NewLengthVerifier(10)
	if err := v.VerifyTransaction(context.Background(), "stellar_tx_hash_123456"); err != nil {
		t.Errorf("Expected 22-char hash to pass, got %v", err)
	}
	if err := v.VerifyTransaction(context.Background(), "0123456789"); err != nil {
		t.Errorf("Expected 10-char hash to pass, got %v", err)
	}
	if err := v.VerifyTransaction(context.Background(), "short"); !errors.Is(err, ErrInvalidTx) {
		t.Errorf("Expected ErrInvalidTx, got %v", err)
	}
}

func horizonStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/transactions/good_tx_hash_0001":
			w.Write([]byte(`{"hash":"good_tx_hash_0001","successful":true,"ledger":42}`))
		case "/transactions/failed_tx_hash_01":
			w.Write([]byte(`{"hash":"failed_tx_hash_01","successful":false,"ledger":43}`))
		case "/transactions/huge_tx_hash_0001":
			w.Write([]byte(`{"hash":"huge_tx_hash_0001","successful":true,"memo":"`))
			w.Write([]byte(strings.Repeat("a", 2<<20)))
			w.Write([]byte(`"}`))
		case "/transactions/broken_tx_hash_01":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":404}`))
		}
	}))
}

func TestHorizonVerifier(t *testing.T) {
	srv := horizonStub(t)
	defer srv.Close()
	v := NewHorizonVerifier(srv.URL+"/", 10, time.Second)
	ctx := context.Background()

	if err := v.VerifyTransaction(ctx, "good_tx_hash_0001"); err != nil {
		t.Errorf("Expected successful tx to pass, got %v", err)
	}
	if err := v.VerifyTransaction(ctx, "failed_tx_hash_01"); !errors.Is(err, ErrInvalidTx) {
		t.Errorf("Expected failed tx to be invalid, got %v", err)
	}
	if err := v.VerifyTransaction(ctx, "unknown_tx_hash_1"); !errors.Is(err, ErrInvalidTx) {
		t.Errorf("Expected unknown tx to be invalid, got %v", err)
	}
	if err := v.VerifyTransaction(ctx, "short"); !errors.Is(err, ErrInvalidTx) {
		t.Errorf("Expected short hash to be invalid, got %v", err)
	}

	err := v.VerifyTransaction(ctx, "broken_tx_hash_01")
	if err == nil || errors.Is(err, ErrInvalidTx) {
		t.Errorf("Expected upstream failure to be a plain error, got %v", err)
	}
}

func TestHorizonVerifier_OversizedResponse(t *testing.T) {
	srv := horizonStub(t)
	defer srv.Close()
	v := NewHorizonVerifier(srv.URL, 10, 5*time.Second)

	err := v.VerifyTransaction(context.Background(), "huge_tx_hash_0001")
	if err == nil {
		t.Fatal("Expected oversized response to be rejected")
	}
	if errors.Is(err, ErrInvalidTx) {
		t.Errorf("Expected a lookup failure rather than ErrInvalidTx, got %v", err)
	}
}
