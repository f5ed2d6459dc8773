// Package memory is the in-process record store used as the default dev
// backend and as the test double for services and handlers.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"grana/internal/core"
	"grana/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	categories   []core.Category
	cards        []core.CreditCard
	recurring    []core.RecurringExpense
	goals        []core.SavingsGoal
	savingsTxs   []core.SavingsTransaction
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Transaction{}
	for _, tx := range s.transactions {
		if tx.OwnerID == ownerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.OwnerID == "" {
		return core.Transaction{}, core.ErrMissingOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = newID()
	}
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

// InsertTransactionBatch appends every record or none: validation happens
// up front and the append itself cannot partially fail.
func (s *Store) InsertTransactionBatch(_ context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	for _, tx := range txs {
		if tx.OwnerID == "" {
			return nil, core.ErrMissingOwner
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = newID()
		}
		out[i] = tx
	}
	s.transactions = append(s.transactions, out...)
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, ownerID, id string, patch store.TransactionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		tx := &s.transactions[i]
		if tx.ID != id || tx.OwnerID != ownerID {
			continue
		}
		if patch.Type != nil {
			tx.Type = *patch.Type
		}
		if patch.Description != nil {
			tx.Description = *patch.Description
		}
		if patch.Amount != nil {
			tx.Amount = *patch.Amount
		}
		if patch.Date != nil {
			tx.Date = *patch.Date
		}
		if patch.CategoryID != nil {
			tx.CategoryID = *patch.CategoryID
		}
		if patch.CardID != nil {
			tx.CardID = *patch.CardID
		}
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.transactions {
		if tx.ID == id && tx.OwnerID == ownerID {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Category{}
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) InsertCategory(_ context.Context, c core.Category) (core.Category, error) {
	if c.OwnerID == "" {
		return core.Category{}, core.ErrMissingOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, ownerID, id string, patch store.CategoryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		c := &s.categories[i]
		if c.ID != id || c.OwnerID != ownerID {
			continue
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Icon != nil {
			c.Icon = *patch.Icon
		}
		if patch.Color != nil {
			c.Color = *patch.Color
		}
		return nil
	}
	return store.ErrNotFound
}

// DeleteCategory removes only the category record; transactions keep
// their dangling reference and report as uncategorized.
func (s *Store) DeleteCategory(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.categories {
		if c.ID == id && c.OwnerID == ownerID {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListCards(_ context.Context, ownerID string) ([]core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.CreditCard{}
	for _, c := range s.cards {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) InsertCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	if c.OwnerID == "" {
		return core.CreditCard{}, core.ErrMissingOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	s.cards = append(s.cards, c)
	return c, nil
}

func (s *Store) UpdateCard(_ context.Context, ownerID, id string, patch store.CardPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cards {
		c := &s.cards[i]
		if c.ID != id || c.OwnerID != ownerID {
			continue
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.LimitAmount != nil {
			c.LimitAmount = *patch.LimitAmount
		}
		if patch.ClosingDay != nil {
			c.ClosingDay = *patch.ClosingDay
		}
		if patch.DueDay != nil {
			c.DueDay = *patch.DueDay
		}
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) DeleteCard(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cards {
		if c.ID == id && c.OwnerID == ownerID {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListRecurring(_ context.Context, ownerID string) ([]core.RecurringExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.RecurringExpense{}
	for _, r := range s.recurring {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) InsertRecurring(_ context.Context, r core.RecurringExpense) (core.RecurringExpense, error) {
	if r.OwnerID == "" {
		return core.RecurringExpense{}, core.ErrMissingOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = newID()
	}
	s.recurring = append(s.recurring, r)
	return r, nil
}

func (s *Store) UpdateRecurring(_ context.Context, ownerID, id string, patch store.RecurringPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recurring {
		r := &s.recurring[i]
		if r.ID != id || r.OwnerID != ownerID {
			continue
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.Amount != nil {
			r.Amount = *patch.Amount
		}
		if patch.DayOfMonth != nil {
			r.DayOfMonth = *patch.DayOfMonth
		}
		if patch.CategoryID != nil {
			r.CategoryID = *patch.CategoryID
		}
		if patch.CardID != nil {
			r.CardID = *patch.CardID
		}
		if patch.Active != nil {
			r.Active = *patch.Active
		}
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) DeleteRecurring(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.recurring {
		if r.ID == id && r.OwnerID == ownerID {
			s.recurring = append(s.recurring[:i], s.recurring[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListSavingsGoals(_ context.Context, ownerID string) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.SavingsGoal{}
	for _, g := range s.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) InsertSavingsGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if g.OwnerID == "" {
		return core.SavingsGoal{}, core.ErrMissingOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = newID()
	}
	s.goals = append(s.goals, g)
	return g, nil
}

func (s *Store) UpdateSavingsGoal(_ context.Context, ownerID, id string, patch store.SavingsGoalPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		g := &s.goals[i]
		if g.ID != id || g.OwnerID != ownerID {
			continue
		}
		if patch.Name != nil {
			g.Name = *patch.Name
		}
		if patch.Icon != nil {
			g.Icon = *patch.Icon
		}
		if patch.Color != nil {
			g.Color = *patch.Color
		}
		if patch.TargetAmount != nil {
			g.TargetAmount = *patch.TargetAmount
		}
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) DeleteSavingsGoal(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.ID == id && g.OwnerID == ownerID {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListSavingsTransactions(_ context.Context, ownerID string) ([]core.SavingsTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.SavingsTransaction{}
	for _, t := range s.savingsTxs {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) InsertSavingsTransaction(_ context.Context, t core.SavingsTransaction) (core.SavingsTransaction, error) {
	if t.OwnerID == "" {
		return core.SavingsTransaction{}, core.ErrMissingOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = newID()
	}
	s.savingsTxs = append(s.savingsTxs, t)
	return t, nil
}

func (s *Store) UpdateSavingsTransaction(_ context.Context, ownerID, id string, patch store.SavingsTransactionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.savingsTxs {
		t := &s.savingsTxs[i]
		if t.ID != id || t.OwnerID != ownerID {
			continue
		}
		if patch.Type != nil {
			t.Type = *patch.Type
		}
		if patch.Amount != nil {
			t.Amount = *patch.Amount
		}
		if patch.Date != nil {
			t.Date = *patch.Date
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) DeleteSavingsTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.savingsTxs {
		if t.ID == id && t.OwnerID == ownerID {
			s.savingsTxs = append(s.savingsTxs[:i], s.savingsTxs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
