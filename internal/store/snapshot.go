package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"grana/internal/core"
)

// Snapshot is one owner's six collections fetched at a point in time.
// Engines compute over snapshots and never mutate them; after a write the
// caller loads a fresh one.
type Snapshot struct {
	OwnerID             string
	Transactions        []core.Transaction
	Categories          []core.Category
	Cards               []core.CreditCard
	Recurring           []core.RecurringExpense
	SavingsGoals        []core.SavingsGoal
	SavingsTransactions []core.SavingsTransaction
}

// LoadSnapshot fetches all six collections concurrently. Any single
// failure aborts the whole load; a half-fetched snapshot is never
// returned.
func LoadSnapshot(ctx context.Context, s Store, ownerID string) (*Snapshot, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}

	snap := &Snapshot{OwnerID: ownerID}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Transactions, err = s.ListTransactions(ctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Categories, err = s.ListCategories(ctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Cards, err = s.ListCards(ctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Recurring, err = s.ListRecurring(ctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.SavingsGoals, err = s.ListSavingsGoals(ctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.SavingsTransactions, err = s.ListSavingsTransactions(ctx, ownerID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// CategoryByID resolves a category reference. A miss is a soft condition:
// the second return is false and callers fall back to "uncategorized".
func (s *Snapshot) CategoryByID(id string) (core.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// CardByID resolves a card reference; a miss means "no card".
func (s *Snapshot) CardByID(id string) (core.CreditCard, bool) {
	for _, c := range s.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return core.CreditCard{}, false
}

// GoalByID resolves a savings goal reference.
func (s *Snapshot) GoalByID(id string) (core.SavingsGoal, bool) {
	for _, g := range s.SavingsGoals {
		if g.ID == id {
			return g, true
		}
	}
	return core.SavingsGoal{}, false
}
