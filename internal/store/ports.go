// Package store defines the record-store gateway ports and the in-memory
// snapshot the engines compute over. Implementations live in
// internal/storage (sqlite) and internal/memory.
package store

import (
	"context"
	"errors"
	"fmt"

	"grana/internal/core"
)

// ErrStore marks every gateway read/write failure; callers classify with
// errors.Is(err, ErrStore).
var ErrStore = errors.New("store error")

// ErrNotFound is returned when an update or delete targets a record that
// does not exist for the given owner.
var ErrNotFound = fmt.Errorf("%w: record not found", ErrStore)

// Patch structs carry partial updates; nil fields are left untouched.
// Inserts always use the full entity structs from internal/core.
type (
	TransactionPatch struct {
		Type        *core.TransactionType
		Description *string
		Amount      *core.Money
		Date        *core.Date
		CategoryID  *string
		CardID      *string
	}

	CategoryPatch struct {
		Name  *string
		Icon  *string
		Color *string
	}

	CardPatch struct {
		Name        *string
		LimitAmount *core.Money
		ClosingDay  *int
		DueDay      *int
	}

	RecurringPatch struct {
		Description *string
		Amount      *core.Money
		DayOfMonth  *int
		CategoryID  *string
		CardID      *string
		Active      *bool
	}

	SavingsGoalPatch struct {
		Name         *string
		Icon         *string
		Color        *string
		TargetAmount *core.Money
	}

	SavingsTransactionPatch struct {
		Type        *core.SavingsTxType
		Amount      *core.Money
		Date        *core.Date
		Description *string
	}
)

// Every operation is scoped to an owner: reads never return another
// owner's records and writes never touch them.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		// InsertTransactionBatch persists all records or none of them;
		// installment expansion relies on this.
		InsertTransactionBatch(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, ownerID, id string, patch TransactionPatch) error
		DeleteTransaction(ctx context.Context, ownerID, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
		InsertCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, ownerID, id string, patch CategoryPatch) error
		DeleteCategory(ctx context.Context, ownerID, id string) error
	}

	CardStore interface {
		ListCards(ctx context.Context, ownerID string) ([]core.CreditCard, error)
		InsertCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
		UpdateCard(ctx context.Context, ownerID, id string, patch CardPatch) error
		DeleteCard(ctx context.Context, ownerID, id string) error
	}

	RecurringStore interface {
		ListRecurring(ctx context.Context, ownerID string) ([]core.RecurringExpense, error)
		InsertRecurring(ctx context.Context, r core.RecurringExpense) (core.RecurringExpense, error)
		UpdateRecurring(ctx context.Context, ownerID, id string, patch RecurringPatch) error
		DeleteRecurring(ctx context.Context, ownerID, id string) error
	}

	SavingsGoalStore interface {
		ListSavingsGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error)
		InsertSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
		UpdateSavingsGoal(ctx context.Context, ownerID, id string, patch SavingsGoalPatch) error
		DeleteSavingsGoal(ctx context.Context, ownerID, id string) error
	}

	SavingsTransactionStore interface {
		ListSavingsTransactions(ctx context.Context, ownerID string) ([]core.SavingsTransaction, error)
		InsertSavingsTransaction(ctx context.Context, s core.SavingsTransaction) (core.SavingsTransaction, error)
		UpdateSavingsTransaction(ctx context.Context, ownerID, id string, patch SavingsTransactionPatch) error
		DeleteSavingsTransaction(ctx context.Context, ownerID, id string) error
	}

	// Store is the full record-store gateway.
	Store interface {
		TransactionStore
		CategoryStore
		CardStore
		RecurringStore
		SavingsGoalStore
		SavingsTransactionStore
	}
)
