package services

import (
	"context"
	"fmt"

	"grana/internal/core"
	"grana/internal/events"
	"grana/internal/invoice"
	applog "grana/internal/log"
	"grana/internal/store"
)

// FinanceService orchestrates record mutations: validation, installment
// expansion, persistence, cache invalidation and change notifications.
// Publishing is best effort; a write that reached the store never fails
// because the broker is down.
type FinanceService struct {
	store     store.Store
	publisher events.Publisher
	reports   *ReportService
	logger    *applog.StructuredLogger
}

func NewFinanceService(st store.Store, publisher events.Publisher, reports *ReportService) *FinanceService {
	return &FinanceService{
		store:     st,
		publisher: publisher,
		reports:   reports,
		logger:    applog.NewStructuredLogger(applog.WrapDefault(applog.ComponentFinance)),
	}
}

// AddTransaction validates and persists a transaction. A card purchase in
// N installments is expanded into N records before saving; the batch is
// written atomically so a partial plan never reaches the store.
func (s *FinanceService) AddTransaction(ctx context.Context, tx core.Transaction) ([]core.Transaction, error) {
	if tx.InstallmentIndex == 0 {
		tx.InstallmentIndex = 1
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if tx.InstallmentCount > 1 {
		shares, err := invoice.ExpandInstallments(tx)
		if err != nil {
			return nil, err
		}
		saved, err := s.store.InsertTransactionBatch(ctx, shares)
		if err != nil {
			return nil, fmt.Errorf("save installment plan: %w", err)
		}
		s.invalidate(tx.OwnerID)
		for _, rec := range saved {
			s.publish(ctx, events.KindTransaction, rec.ID, rec.OwnerID, events.OpCreated)
		}
		return saved, nil
	}

	saved, err := s.store.InsertTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}
	s.invalidate(tx.OwnerID)
	s.publish(ctx, events.KindTransaction, saved.ID, saved.OwnerID, events.OpCreated)
	return []core.Transaction{saved}, nil
}

func (s *FinanceService) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, ownerID)
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, ownerID, id string, patch store.TransactionPatch) error {
	if err := validateTransactionPatch(patch); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, ownerID, id, patch); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindTransaction, id, ownerID, events.OpUpdated)
	return nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindTransaction, id, ownerID, events.OpDeleted)
	return nil
}

func (s *FinanceService) AddCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}
	saved, err := s.store.InsertCategory(ctx, cat)
	if err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	s.invalidate(saved.OwnerID)
	s.publish(ctx, events.KindCategory, saved.ID, saved.OwnerID, events.OpCreated)
	return saved, nil
}

func (s *FinanceService) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	return s.store.ListCategories(ctx, ownerID)
}

func (s *FinanceService) UpdateCategory(ctx context.Context, ownerID, id string, patch store.CategoryPatch) error {
	if patch.Name != nil && *patch.Name == "" {
		return fmt.Errorf("%w: category name cannot be empty", core.ErrValidation)
	}
	if err := s.store.UpdateCategory(ctx, ownerID, id, patch); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindCategory, id, ownerID, events.OpUpdated)
	return nil
}

// DeleteCategory removes the category only. Transactions keep pointing at
// the dead ID and degrade to the uncategorized bucket in reports.
func (s *FinanceService) DeleteCategory(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteCategory(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindCategory, id, ownerID, events.OpDeleted)
	return nil
}

func (s *FinanceService) AddCard(ctx context.Context, card core.CreditCard) (core.CreditCard, error) {
	if err := card.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	saved, err := s.store.InsertCard(ctx, card)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("save card: %w", err)
	}
	s.invalidate(saved.OwnerID)
	s.publish(ctx, events.KindCard, saved.ID, saved.OwnerID, events.OpCreated)
	return saved, nil
}

func (s *FinanceService) ListCards(ctx context.Context, ownerID string) ([]core.CreditCard, error) {
	return s.store.ListCards(ctx, ownerID)
}

func (s *FinanceService) UpdateCard(ctx context.Context, ownerID, id string, patch store.CardPatch) error {
	if err := validateCardPatch(patch); err != nil {
		return err
	}
	if err := s.store.UpdateCard(ctx, ownerID, id, patch); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindCard, id, ownerID, events.OpUpdated)
	return nil
}

func (s *FinanceService) DeleteCard(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteCard(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindCard, id, ownerID, events.OpDeleted)
	return nil
}

func (s *FinanceService) AddRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	saved, err := s.store.InsertRecurring(ctx, re)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("save recurring expense: %w", err)
	}
	s.invalidate(re.OwnerID)
	s.publish(ctx, events.KindRecurring, saved.ID, saved.OwnerID, events.OpCreated)
	return saved, nil
}

func (s *FinanceService) ListRecurring(ctx context.Context, ownerID string) ([]core.RecurringExpense, error) {
	return s.store.ListRecurring(ctx, ownerID)
}

func (s *FinanceService) UpdateRecurring(ctx context.Context, ownerID, id string, patch store.RecurringPatch) error {
	if err := validateRecurringPatch(patch); err != nil {
		return err
	}
	if err := s.store.UpdateRecurring(ctx, ownerID, id, patch); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindRecurring, id, ownerID, events.OpUpdated)
	return nil
}

func (s *FinanceService) DeleteRecurring(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteRecurring(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindRecurring, id, ownerID, events.OpDeleted)
	return nil
}

func (s *FinanceService) AddSavingsGoal(ctx context.Context, goal core.SavingsGoal) (core.SavingsGoal, error) {
	if err := goal.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	saved, err := s.store.InsertSavingsGoal(ctx, goal)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("save savings goal: %w", err)
	}
	s.invalidate(saved.OwnerID)
	s.publish(ctx, events.KindSavingsGoal, saved.ID, saved.OwnerID, events.OpCreated)
	return saved, nil
}

func (s *FinanceService) ListSavingsGoals(ctx context.Context, ownerID string) ([]core.SavingsGoal, error) {
	return s.store.ListSavingsGoals(ctx, ownerID)
}

func (s *FinanceService) UpdateSavingsGoal(ctx context.Context, ownerID, id string, patch store.SavingsGoalPatch) error {
	if patch.Name != nil && *patch.Name == "" {
		return fmt.Errorf("%w: goal name cannot be empty", core.ErrValidation)
	}
	if patch.TargetAmount != nil && patch.TargetAmount.Cents < 0 {
		return core.ErrNegativeTarget
	}
	if err := s.store.UpdateSavingsGoal(ctx, ownerID, id, patch); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindSavingsGoal, id, ownerID, events.OpUpdated)
	return nil
}

func (s *FinanceService) DeleteSavingsGoal(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteSavingsGoal(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindSavingsGoal, id, ownerID, events.OpDeleted)
	return nil
}

func (s *FinanceService) AddSavingsTransaction(ctx context.Context, mv core.SavingsTransaction) (core.SavingsTransaction, error) {
	if err := mv.Validate(); err != nil {
		return core.SavingsTransaction{}, err
	}
	saved, err := s.store.InsertSavingsTransaction(ctx, mv)
	if err != nil {
		return core.SavingsTransaction{}, fmt.Errorf("save savings movement: %w", err)
	}
	s.invalidate(mv.OwnerID)
	s.publish(ctx, events.KindSavingsTransaction, saved.ID, saved.OwnerID, events.OpCreated)
	return saved, nil
}

func (s *FinanceService) ListSavingsTransactions(ctx context.Context, ownerID string) ([]core.SavingsTransaction, error) {
	return s.store.ListSavingsTransactions(ctx, ownerID)
}

func (s *FinanceService) DeleteSavingsTransaction(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteSavingsTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.publish(ctx, events.KindSavingsTransaction, id, ownerID, events.OpDeleted)
	return nil
}

func (s *FinanceService) publish(ctx context.Context, kind, id, ownerID, op string) {
	if s.publisher == nil {
		return
	}
	msg := events.NewRecordChangeMessage(kind, id, ownerID, op)
	if err := s.publisher.PublishRecordChange(ctx, msg); err != nil {
		s.logger.LogError(ctx, "Failed to publish record change", err,
			applog.ComponentEvents, op, applog.NewFields().WithRecord(kind, id, ownerID))
		return
	}
	s.logger.LogRecordChange(ctx, op, kind, id, ownerID)
}

func (s *FinanceService) invalidate(ownerID string) {
	if s.reports != nil {
		s.reports.Invalidate(ownerID)
	}
}

func validateTransactionPatch(p store.TransactionPatch) error {
	if p.Type != nil && *p.Type != core.Income && *p.Type != core.Expense {
		return fmt.Errorf("%w: unknown transaction type %q", core.ErrValidation, *p.Type)
	}
	if p.Amount != nil && p.Amount.Cents <= 0 {
		return core.ErrInvalidAmount
	}
	if p.Description != nil && *p.Description == "" {
		return fmt.Errorf("%w: description cannot be empty", core.ErrValidation)
	}
	return nil
}

func validateCardPatch(p store.CardPatch) error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("%w: card name cannot be empty", core.ErrValidation)
	}
	if p.LimitAmount != nil && p.LimitAmount.Cents < 0 {
		return core.ErrNegativeLimit
	}
	if p.ClosingDay != nil && (*p.ClosingDay < 1 || *p.ClosingDay > 31) {
		return core.ErrInvalidClosingDay
	}
	if p.DueDay != nil && (*p.DueDay < 1 || *p.DueDay > 31) {
		return fmt.Errorf("%w: due day must be between 1 and 31", core.ErrValidation)
	}
	return nil
}

func validateRecurringPatch(p store.RecurringPatch) error {
	if p.Description != nil && *p.Description == "" {
		return fmt.Errorf("%w: description cannot be empty", core.ErrValidation)
	}
	if p.Amount != nil && p.Amount.Cents <= 0 {
		return core.ErrInvalidAmount
	}
	if p.DayOfMonth != nil && (*p.DayOfMonth < 1 || *p.DayOfMonth > 31) {
		return fmt.Errorf("%w: day of month must be between 1 and 31", core.ErrValidation)
	}
	return nil
}
