package memory

import (
	"context"
	"errors"
	"testing"

	"grana/internal/core"
	"grana/internal/store"
)

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.InsertCategory(ctx, core.Category{OwnerID: "alice", Name: "Casa"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	bobCat, err := s.InsertCategory(ctx, core.Category{OwnerID: "bob", Name: "Lazer"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	aliceCats, err := s.ListCategories(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(aliceCats) != 1 || aliceCats[0].Name != "Casa" {
		t.Fatalf("alice sees %+v", aliceCats)
	}

	// Alice cannot touch bob's record.
	if err := s.DeleteCategory(ctx, "alice", bobCat.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-owner delete: %v", err)
	}
	name := "Hackeada"
	if err := s.UpdateCategory(ctx, "alice", bobCat.ID, store.CategoryPatch{Name: &name}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-owner update: %v", err)
	}
	bobCats, _ := s.ListCategories(ctx, "bob")
	if bobCats[0].Name != "Lazer" {
		t.Fatalf("bob's category mutated: %+v", bobCats[0])
	}
}

func TestInsertRejectsMissingOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.InsertTransaction(ctx, core.Transaction{Description: "sem dono"}); !errors.Is(err, core.ErrMissingOwner) {
		t.Fatalf("expected missing owner, got %v", err)
	}
	if _, err := s.InsertTransactionBatch(ctx, []core.Transaction{
		{OwnerID: "u1", Description: "ok"},
		{Description: "sem dono"},
	}); !errors.Is(err, core.ErrMissingOwner) {
		t.Fatalf("expected missing owner, got %v", err)
	}
	// The batch failed as a whole: nothing was committed.
	txs, _ := s.ListTransactions(ctx, "u1")
	if len(txs) != 0 {
		t.Fatalf("partial batch committed: %+v", txs)
	}
}

func TestTransactionUpdatePatch(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx, err := s.InsertTransaction(ctx, core.Transaction{
		OwnerID:     "u1",
		Type:        core.Expense,
		Description: "mercado",
		Amount:      core.Money{Cents: 1000},
		Date:        core.NewDate(2025, 1, 10),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	desc := "supermercado"
	amount := core.Money{Cents: 2500}
	if err := s.UpdateTransaction(ctx, "u1", tx.ID, store.TransactionPatch{Description: &desc, Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}

	txs, _ := s.ListTransactions(ctx, "u1")
	got := txs[0]
	if got.Description != "supermercado" || got.Amount.Cents != 2500 {
		t.Fatalf("patched = %+v", got)
	}
	// Unpatched fields stay put.
	if got.Date.ISO() != "2025-01-10" || got.Type != core.Expense {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestSnapshotLoad(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.InsertCard(ctx, core.CreditCard{OwnerID: "u1", Name: "Visa", ClosingDay: 10, DueDay: 17}); err != nil {
		t.Fatalf("insert card: %v", err)
	}
	if _, err := s.InsertSavingsGoal(ctx, core.SavingsGoal{OwnerID: "u1", Name: "Viagem"}); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	snap, err := store.LoadSnapshot(ctx, s, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Cards) != 1 || len(snap.SavingsGoals) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Transactions) != 0 || snap.Transactions == nil {
		t.Fatalf("empty collections must be non-nil empty slices")
	}

	if _, err := store.LoadSnapshot(ctx, s, ""); !errors.Is(err, core.ErrMissingOwner) {
		t.Fatalf("expected missing owner, got %v", err)
	}
}

func TestRecurringToggle(t *testing.T) {
	ctx := context.Background()
	s := New()
	re, err := s.InsertRecurring(ctx, core.RecurringExpense{OwnerID: "u1", Description: "academia", Amount: core.Money{Cents: 9000}, DayOfMonth: 3, Active: true})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	inactive := false
	if err := s.UpdateRecurring(ctx, "u1", re.ID, store.RecurringPatch{Active: &inactive}); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ := s.ListRecurring(ctx, "u1")
	if list[0].Active {
		t.Fatalf("recurring still active after toggle")
	}
}
