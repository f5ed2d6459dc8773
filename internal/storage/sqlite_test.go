package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"grana/internal/core"
	"grana/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "grana.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := core.Transaction{
		OwnerID:          "u1",
		Type:             core.Expense,
		Description:      "mercado",
		Amount:           core.Money{Cents: 12345},
		Date:             core.NewDate(2025, 3, 9),
		CategoryID:       "cat1",
		CardID:           "card1",
		InstallmentCount: 1,
		InstallmentIndex: 1,
	}
	saved, err := s.InsertTransaction(ctx, in)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("no id assigned")
	}

	list, err := s.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d transactions", len(list))
	}
	got := list[0]
	if got.Description != "mercado" || got.Amount.Cents != 12345 || got.Date.ISO() != "2025-03-09" {
		t.Fatalf("round trip mangled: %+v", got)
	}

	// Other owners see nothing.
	other, err := s.ListTransactions(ctx, "u2")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("cross-owner leak: %+v", other)
	}
}

func TestTransactionBatchCommitsAtomically(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	batch := []core.Transaction{
		{OwnerID: "u1", Type: core.Expense, Description: "tv 1/2", Amount: core.Money{Cents: 50000}, Date: core.NewDate(2025, 1, 10), InstallmentCount: 2, InstallmentIndex: 1},
		{OwnerID: "u1", Type: core.Expense, Description: "tv 2/2", Amount: core.Money{Cents: 50000}, Date: core.NewDate(2025, 2, 10), InstallmentCount: 2, InstallmentIndex: 2},
	}
	saved, err := s.InsertTransactionBatch(ctx, batch)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(saved) != 2 || saved[0].ID == "" || saved[1].ID == "" {
		t.Fatalf("saved = %+v", saved)
	}

	// Duplicate IDs break the primary key, so re-running the exact same
	// rows must fail and leave the table unchanged.
	if _, err := s.InsertTransactionBatch(ctx, saved); err == nil {
		t.Fatalf("expected constraint failure")
	} else if !errors.Is(err, store.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	list, _ := s.ListTransactions(ctx, "u1")
	if len(list) != 2 {
		t.Fatalf("batch retry corrupted table: %d rows", len(list))
	}
}

func TestUpdateAndDeleteScoping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	card, err := s.InsertCard(ctx, core.CreditCard{OwnerID: "u1", Name: "Visa", LimitAmount: core.Money{Cents: 100000}, ClosingDay: 15, DueDay: 22})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	closing := 20
	if err := s.UpdateCard(ctx, "u1", card.ID, store.CardPatch{ClosingDay: &closing}); err != nil {
		t.Fatalf("update: %v", err)
	}
	cards, _ := s.ListCards(ctx, "u1")
	if cards[0].ClosingDay != 20 || cards[0].DueDay != 22 {
		t.Fatalf("patch applied wrong: %+v", cards[0])
	}

	if err := s.UpdateCard(ctx, "intruso", card.ID, store.CardPatch{ClosingDay: &closing}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-owner update: %v", err)
	}
	if err := s.DeleteCard(ctx, "intruso", card.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-owner delete: %v", err)
	}
	if err := s.DeleteCard(ctx, "u1", card.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cards, _ = s.ListCards(ctx, "u1")
	if len(cards) != 0 {
		t.Fatalf("card survived deletion")
	}
}

func TestSavingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	goal, err := s.InsertSavingsGoal(ctx, core.SavingsGoal{OwnerID: "u1", Name: "Viagem", Icon: "✈️", TargetAmount: core.Money{Cents: 500000}})
	if err != nil {
		t.Fatalf("insert goal: %v", err)
	}
	_, err = s.InsertSavingsTransaction(ctx, core.SavingsTransaction{
		OwnerID: "u1", GoalID: goal.ID, Type: core.Deposit,
		Amount: core.Money{Cents: 10000}, Date: core.NewDate(2025, 4, 1),
	})
	if err != nil {
		t.Fatalf("insert movement: %v", err)
	}

	movements, err := s.ListSavingsTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(movements) != 1 || movements[0].Type != core.Deposit || movements[0].GoalID != goal.ID {
		t.Fatalf("round trip mangled: %+v", movements)
	}
}

func TestDeleteCategoryKeepsTransactions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cat, err := s.InsertCategory(ctx, core.Category{OwnerID: "u1", Name: "Casa"})
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	_, err = s.InsertTransaction(ctx, core.Transaction{
		OwnerID: "u1", Type: core.Expense, Description: "luz",
		Amount: core.Money{Cents: 9000}, Date: core.NewDate(2025, 2, 5),
		CategoryID: cat.ID, InstallmentCount: 1, InstallmentIndex: 1,
	})
	if err != nil {
		t.Fatalf("insert tx: %v", err)
	}

	if err := s.DeleteCategory(ctx, "u1", cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	txs, _ := s.ListTransactions(ctx, "u1")
	if len(txs) != 1 || txs[0].CategoryID != cat.ID {
		t.Fatalf("transaction corrupted by category deletion: %+v", txs)
	}
}
