// Package storage is the SQLite implementation of the record-store
// gateway defined in internal/store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"grana/internal/core"
	"grana/internal/store"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// wrap tags gateway failures so callers can classify them with
// errors.Is(err, store.ErrStore).
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(store.ErrStore, err))
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, type, description, amount_cents, date,
		       category_id, card_id, installment_count, installment_index
		FROM transactions WHERE owner_id = ? ORDER BY date DESC, id`, ownerID)
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var tx core.Transaction
		var txType, date string
		if err := rows.Scan(&tx.ID, &tx.OwnerID, &txType, &tx.Description, &tx.Amount.Cents,
			&date, &tx.CategoryID, &tx.CardID, &tx.InstallmentCount, &tx.InstallmentIndex); err != nil {
			return nil, wrap("scan transaction", err)
		}
		tx.Type = core.TransactionType(txType)
		if tx.Date, err = core.ParseISODate(date); err != nil {
			return nil, wrap("parse transaction date", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list transactions", err)
	}
	return out, nil
}

func (s *SQLiteStore) InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.OwnerID == "" {
		return core.Transaction{}, core.ErrMissingOwner
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, owner_id, type, description, amount_cents, date,
			 category_id, card_id, installment_count, installment_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, string(tx.Type), tx.Description, tx.Amount.Cents, tx.Date.ISO(),
		tx.CategoryID, tx.CardID, tx.InstallmentCount, tx.InstallmentIndex)
	if err != nil {
		return core.Transaction{}, wrap("insert transaction", err)
	}
	return tx, nil
}

// InsertTransactionBatch writes all records inside one database
// transaction, so an installment expansion either commits fully or not
// at all.
func (s *SQLiteStore) InsertTransactionBatch(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	for i := range txs {
		if txs[i].OwnerID == "" {
			return nil, core.ErrMissingOwner
		}
		if txs[i].ID == "" {
			txs[i].ID = uuid.NewString()
		}
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("begin batch", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions
			(id, owner_id, type, description, amount_cents, date,
			 category_id, card_id, installment_count, installment_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, wrap("prepare batch insert", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if _, err := stmt.ExecContext(ctx,
			tx.ID, tx.OwnerID, string(tx.Type), tx.Description, tx.Amount.Cents, tx.Date.ISO(),
			tx.CategoryID, tx.CardID, tx.InstallmentCount, tx.InstallmentIndex); err != nil {
			return nil, wrap("insert batch transaction", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, wrap("commit batch", err)
	}

	slog.InfoContext(ctx, "Transaction batch saved",
		"owner_id", txs[0].OwnerID,
		"count", len(txs))
	return txs, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, ownerID, id string, patch store.TransactionPatch) error {
	sets, args := []string{}, []any{}
	if patch.Type != nil {
		sets, args = append(sets, "type = ?"), append(args, string(*patch.Type))
	}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	if patch.Amount != nil {
		sets, args = append(sets, "amount_cents = ?"), append(args, patch.Amount.Cents)
	}
	if patch.Date != nil {
		sets, args = append(sets, "date = ?"), append(args, patch.Date.ISO())
	}
	if patch.CategoryID != nil {
		sets, args = append(sets, "category_id = ?"), append(args, *patch.CategoryID)
	}
	if patch.CardID != nil {
		sets, args = append(sets, "card_id = ?"), append(args, *patch.CardID)
	}
	return s.exec(ctx, "update transaction", "transactions", sets, args, ownerID, id)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	return s.delete(ctx, "delete transaction", "transactions", ownerID, id)
}

func (s *SQLiteStore) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, icon, color
		FROM categories WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, wrap("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list categories", err)
	}
	return out, nil
}

func (s *SQLiteStore) InsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.OwnerID == "" {
		return core.Category{}, core.ErrMissingOwner
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, icon, color)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Icon, c.Color)
	if err != nil {
		return core.Category{}, wrap("insert category", err)
	}
	return c, nil
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, ownerID, id string, patch store.CategoryPatch) error {
	sets, args := []string{}, []any{}
	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.Icon != nil {
		sets, args = append(sets, "icon = ?"), append(args, *patch.Icon)
	}
	if patch.Color != nil {
		sets, args = append(sets, "color = ?"), append(args, *patch.Color)
	}
	return s.exec(ctx, "update category", "categories", sets, args, ownerID, id)
}

// DeleteCategory removes the category only; referencing transactions are
// untouched and degrade to the uncategorized bucket on read.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, ownerID, id string) error {
	return s.delete(ctx, "delete category", "categories", ownerID, id)
}

func (s *SQLiteStore) ListCards(ctx context.Context, ownerID string) ([]core.CreditCard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, limit_cents, closing_day, due_day
		FROM credit_cards WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, wrap("list cards", err)
	}
	defer rows.Close()

	out := []core.CreditCard{}
	for rows.Next() {
		var c core.CreditCard
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.LimitAmount.Cents, &c.ClosingDay, &c.DueDay); err != nil {
			return nil, wrap("scan card", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list cards", err)
	}
	return out, nil
}

func (s *SQLiteStore) InsertCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	if c.OwnerID == "" {
		return core.CreditCard{}, core.ErrMissingOwner
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credit_cards (id, owner_id, name, limit_cents, closing_day, due_day)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.LimitAmount.Cents, c.ClosingDay, c.DueDay)
	if err != nil {
		return core.CreditCard{}, wrap("insert card", err)
	}
	return c, nil
}

func (s *SQLiteStore) UpdateCard(ctx context.Context, ownerID, id string, patch store.CardPatch) error {
	sets, args := []string{}, []any{}
	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.LimitAmount != nil {
		sets, args = append(sets, "limit_cents = ?"), append(args, patch.LimitAmount.Cents)
	}
	if patch.ClosingDay != nil {
		sets, args = append(sets, "closing_day = ?"), append(args, *patch.ClosingDay)
	}
	if patch.DueDay != nil {
		sets, args = append(sets, "due_day = ?"), append(args, *patch.DueDay)
	}
	return s.exec(ctx, "update card", "credit_cards", sets, args, ownerID, id)
}

func (s *SQLiteStore) DeleteCard(ctx context.Context, ownerID, id string) error {
	return s.delete(ctx, "delete card", "credit_cards", ownerID, id)
}

func (s *SQLiteStore) ListRecurring(ctx context.Context, ownerID string) ([]core.RecurringExpense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, description, amount_cents, day_of_month, category_id, card_id, active
		FROM recurring_expenses WHERE owner_id = ? ORDER BY description`, ownerID)
	if err != nil {
		return nil, wrap("list recurring", err)
	}
	defer rows.Close()

	out := []core.RecurringExpense{}
	for rows.Next() {
		var r core.RecurringExpense
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Description, &r.Amount.Cents,
			&r.DayOfMonth, &r.CategoryID, &r.CardID, &r.Active); err != nil {
			return nil, wrap("scan recurring", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list recurring", err)
	}
	return out, nil
}

func (s *SQLiteStore) InsertRecurring(ctx context.Context, r core.RecurringExpense) (core.RecurringExpense, error) {
	if r.OwnerID == "" {
		return core.RecurringExpense{}, core.ErrMissingOwner
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_expenses (id, owner_id, description, amount_cents, day_of_month, category_id, card_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.Description, r.Amount.Cents, r.DayOfMonth, r.CategoryID, r.CardID, r.Active)
	if err != nil {
		return core.RecurringExpense{}, wrap("insert recurring", err)
	}
	return r, nil
}

func (s *SQLiteStore) UpdateRecurring(ctx context.Context, ownerID, id string, patch store.RecurringPatch) error {
	sets, args := []string{}, []any{}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	if patch.Amount != nil {
		sets, args = append(sets, "amount_cents = ?"), append(args, patch.Amount.Cents)
	}
	if patch.DayOfMonth != nil {
		sets, args = append(sets, "day_of_month = ?"), append(args, *patch.DayOfMonth)
	}
	if patch.CategoryID != nil {
		sets, args = append(sets, "category_id = ?"), append(args, *patch.CategoryID)
	}
	if patch.CardID != nil {
		sets, args = append(sets, "card_id = ?"), append(args, *patch.CardID)
	}
	if patch.Active != nil {
		sets, args = append(sets, "active = ?"), append(args, *patch.Active)
	}
	return s.exec(ctx, "update recurring", "recurring_expenses", sets, args, ownerID, id)
}

func (s *SQLiteStore) DeleteRecurring(ctx context.Context, ownerID, id string) error {
	return s.delete(ctx, "delete recurring", "recurring_expenses", ownerID, id)
}

func (s *SQLiteStore) ListSavingsGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, icon, color, target_cents
		FROM savings_goals WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, wrap("list savings goals", err)
	}
	defer rows.Close()

	out := []core.SavingsGoal{}
	for rows.Next() {
		var g core.SavingsGoal
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Icon, &g.Color, &g.TargetAmount.Cents); err != nil {
			return nil, wrap("scan savings goal", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list savings goals", err)
	}
	return out, nil
}

func (s *SQLiteStore) InsertSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if g.OwnerID == "" {
		return core.SavingsGoal{}, core.ErrMissingOwner
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO savings_goals (id, owner_id, name, icon, color, target_cents)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, g.Icon, g.Color, g.TargetAmount.Cents)
	if err != nil {
		return core.SavingsGoal{}, wrap("insert savings goal", err)
	}
	return g, nil
}

func (s *SQLiteStore) UpdateSavingsGoal(ctx context.Context, ownerID, id string, patch store.SavingsGoalPatch) error {
	sets, args := []string{}, []any{}
	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.Icon != nil {
		sets, args = append(sets, "icon = ?"), append(args, *patch.Icon)
	}
	if patch.Color != nil {
		sets, args = append(sets, "color = ?"), append(args, *patch.Color)
	}
	if patch.TargetAmount != nil {
		sets, args = append(sets, "target_cents = ?"), append(args, patch.TargetAmount.Cents)
	}
	return s.exec(ctx, "update savings goal", "savings_goals", sets, args, ownerID, id)
}

func (s *SQLiteStore) DeleteSavingsGoal(ctx context.Context, ownerID, id string) error {
	return s.delete(ctx, "delete savings goal", "savings_goals", ownerID, id)
}

func (s *SQLiteStore) ListSavingsTransactions(ctx context.Context, ownerID string) ([]core.SavingsTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, goal_id, type, amount_cents, date, description
		FROM savings_transactions WHERE owner_id = ? ORDER BY date DESC, id`, ownerID)
	if err != nil {
		return nil, wrap("list savings transactions", err)
	}
	defer rows.Close()

	out := []core.SavingsTransaction{}
	for rows.Next() {
		var t core.SavingsTransaction
		var txType, date string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.GoalID, &txType, &t.Amount.Cents, &date, &t.Description); err != nil {
			return nil, wrap("scan savings transaction", err)
		}
		t.Type = core.SavingsTxType(txType)
		if t.Date, err = core.ParseISODate(date); err != nil {
			return nil, wrap("parse savings transaction date", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list savings transactions", err)
	}
	return out, nil
}

func (s *SQLiteStore) InsertSavingsTransaction(ctx context.Context, t core.SavingsTransaction) (core.SavingsTransaction, error) {
	if t.OwnerID == "" {
		return core.SavingsTransaction{}, core.ErrMissingOwner
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO savings_transactions (id, owner_id, goal_id, type, amount_cents, date, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.GoalID, string(t.Type), t.Amount.Cents, t.Date.ISO(), t.Description)
	if err != nil {
		return core.SavingsTransaction{}, wrap("insert savings transaction", err)
	}
	return t, nil
}

func (s *SQLiteStore) UpdateSavingsTransaction(ctx context.Context, ownerID, id string, patch store.SavingsTransactionPatch) error {
	sets, args := []string{}, []any{}
	if patch.Type != nil {
		sets, args = append(sets, "type = ?"), append(args, string(*patch.Type))
	}
	if patch.Amount != nil {
		sets, args = append(sets, "amount_cents = ?"), append(args, patch.Amount.Cents)
	}
	if patch.Date != nil {
		sets, args = append(sets, "date = ?"), append(args, patch.Date.ISO())
	}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	return s.exec(ctx, "update savings transaction", "savings_transactions", sets, args, ownerID, id)
}

func (s *SQLiteStore) DeleteSavingsTransaction(ctx context.Context, ownerID, id string) error {
	return s.delete(ctx, "delete savings transaction", "savings_transactions", ownerID, id)
}

// exec applies a patch-style UPDATE scoped to the owning user. An empty
// patch is a no-op, not an error.
func (s *SQLiteStore) exec(ctx context.Context, op, table string, sets []string, args []any, ownerID, id string) error {
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, ownerID)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND owner_id = ?", table, strings.Join(sets, ", ")),
		args...)
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) delete(ctx context.Context, op, table string, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ? AND owner_id = ?", table), id, ownerID)
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
