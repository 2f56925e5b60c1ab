package transactions

import (
	"context"
	"fmt"
	"testing"

	"github.com/Custodia-Network/wallet_layer/internal/app/domain/transaction"
	"github.com/Custodia-Network/wallet_layer/internal/app/services/users"
	"github.com/Custodia-Network/wallet_layer/internal/app/storage/memory"
)

func newTestService(t *testing.T) (*Service, *users.Service) {
	t.Helper()
	store := memory.New()
	registry := users.New(store, nil)
	return New(store, registry, nil), registry
}

func TestDepositCreditsBalance(t *testing.T) {
	ctx := context.Background()
	svc, registry := newTestService(t)

	u, _, err := registry.Register(ctx, "0xabc", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tx, err := svc.Record(ctx, u, Record{Type: transaction.TypeDeposit, Amount: 50})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if tx.ID == 0 {
		t.Error("expected non-zero transaction id")
	}
	if tx.Status != transaction.StatusPending {
		t.Errorf("expected default status %q, got %q", transaction.StatusPending, tx.Status)
	}

	got, err := registry.GetByWallet(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if got.BankBalance != 50 {
		t.Errorf("deposit should credit balance by 50, got %v", got.BankBalance)
	}
}

func TestWithdrawalLeavesBalanceUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, registry := newTestService(t)

	u, _, err := registry.Register(ctx, "0xabc", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Record(ctx, u, Record{Type: transaction.TypeWithdrawal, Amount: 50}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := registry.GetByWallet(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if got.BankBalance != 0 {
		t.Errorf("withdrawal must not touch the cached balance, got %v", got.BankBalance)
	}
}

func TestRecordRequiresType(t *testing.T) {
	ctx := context.Background()
	svc, registry := newTestService(t)

	u, _, err := registry.Register(ctx, "0xabc", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Record(ctx, u, Record{Amount: 10}); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestListForUserCapsAtDefaultLimit(t *testing.T) {
	ctx := context.Background()
	svc, registry := newTestService(t)

	u, _, err := registry.Register(ctx, "0xabc", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	for i := 0; i < DefaultListLimit+5; i++ {
		_, err := svc.Record(ctx, u, Record{
			Type:   transaction.TypeTransfer,
			Amount: float64(i),
			Hash:   fmt.Sprintf("0xhash%d", i),
		})
		if err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	txs, err := svc.ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(txs) != DefaultListLimit {
		t.Fatalf("expected %d transactions, got %d", DefaultListLimit, len(txs))
	}
	if txs[0].Amount != float64(DefaultListLimit+4) {
		t.Errorf("expected newest first, got amount %v", txs[0].Amount)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, registry := newTestService(t)

	u, _, err := registry.Register(ctx, "0xabc", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	tx, err := svc.Record(ctx, u, Record{Type: transaction.TypeTransfer, Amount: 5})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := svc.UpdateStatus(ctx, tx.ID, "confirmed"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	txs, err := svc.ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if txs[0].Status != "confirmed" {
		t.Errorf("expected status confirmed, got %q", txs[0].Status)
	}
}
