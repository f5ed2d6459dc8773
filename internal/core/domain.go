package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Deposit  SavingsTxType = "deposit"
	Withdraw SavingsTxType = "withdraw"

	MaxInstallments = 48
)

type (
	TransactionType string

	SavingsTxType string

	// Transaction is a single dated income or expense record. A purchase
	// split into N installments is stored as N independent transactions
	// sharing a description, with InstallmentIndex running 1..N.
	Transaction struct {
		ID               string          `json:"id"`
		OwnerID          string          `json:"owner_id"`
		Type             TransactionType `json:"type"`
		Description      string          `json:"description"`
		Amount           Money           `json:"amount"`
		Date             Date            `json:"date"`
		CategoryID       string          `json:"category_id,omitempty"` // optional
		CardID           string          `json:"card_id,omitempty"`     // optional, expenses only
		InstallmentCount int             `json:"installment_count"`
		InstallmentIndex int             `json:"installment_index"`
	}

	Category struct {
		ID      string `json:"id"`
		OwnerID string `json:"owner_id"`
		Name    string `json:"name"`
		Icon    string `json:"icon,omitempty"`
		Color   string `json:"color,omitempty"`
	}

	// CreditCard statements close on ClosingDay; charges on or after that
	// day roll into the following month's invoice.
	CreditCard struct {
		ID          string `json:"id"`
		OwnerID     string `json:"owner_id"`
		Name        string `json:"name"`
		LimitAmount Money  `json:"limit_amount"`
		ClosingDay  int    `json:"closing_day"` // 1-31
		DueDay      int    `json:"due_day"`     // 1-31
	}

	// RecurringExpense is a template charge applied to every month while
	// Active. It is never materialized as transactions.
	RecurringExpense struct {
		ID          string `json:"id"`
		OwnerID     string `json:"owner_id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		DayOfMonth  int    `json:"day_of_month"`          // 1-31
		CategoryID  string `json:"category_id,omitempty"` // optional
		CardID      string `json:"card_id,omitempty"`     // optional
		Active      bool   `json:"active"`
	}

	// SavingsGoal balance is always derived from its SavingsTransactions.
	SavingsGoal struct {
		ID           string `json:"id"`
		OwnerID      string `json:"owner_id"`
		Name         string `json:"name"`
		Icon         string `json:"icon,omitempty"`
		Color        string `json:"color,omitempty"`
		TargetAmount Money  `json:"target_amount"`
	}

	SavingsTransaction struct {
		ID          string        `json:"id"`
		OwnerID     string        `json:"owner_id"`
		GoalID      string        `json:"goal_id"`
		Type        SavingsTxType `json:"type"`
		Amount      Money         `json:"amount"`
		Date        Date          `json:"date"`
		Description string        `json:"description,omitempty"` // optional
	}
)

// ErrValidation marks every input validation failure; callers classify with
// errors.Is(err, ErrValidation).
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrEmptyDescription    = fmt.Errorf("%w: empty description", ErrValidation)
	ErrEmptyName           = fmt.Errorf("%w: empty name", ErrValidation)
	ErrMissingOwner        = fmt.Errorf("%w: missing owner id", ErrValidation)
	ErrInvalidType         = fmt.Errorf("%w: invalid type", ErrValidation)
	ErrInvalidDate         = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidClosingDay   = fmt.Errorf("%w: closing day must be between 1 and 31", ErrValidation)
	ErrInvalidDueDay       = fmt.Errorf("%w: due day must be between 1 and 31", ErrValidation)
	ErrInvalidDayOfMonth   = fmt.Errorf("%w: day of month must be between 1 and 31", ErrValidation)
	ErrInvalidInstallments = fmt.Errorf("%w: installment count must be between 1 and 48", ErrValidation)
	ErrNegativeLimit       = fmt.Errorf("%w: limit must not be negative", ErrValidation)
	ErrNegativeTarget      = fmt.Errorf("%w: target must not be negative", ErrValidation)
	ErrMissingGoal         = fmt.Errorf("%w: missing goal id", ErrValidation)
	ErrCardOnIncome        = fmt.Errorf("%w: income cannot be charged to a card", ErrValidation)
	ErrInstallmentsNoCard  = fmt.Errorf("%w: installments require a card", ErrValidation)
)

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrMissingOwner
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Type == Income && t.CardID != "" {
		return ErrCardOnIncome
	}
	if t.InstallmentCount < 1 || t.InstallmentCount > MaxInstallments {
		return ErrInvalidInstallments
	}
	if t.InstallmentIndex < 1 || t.InstallmentIndex > t.InstallmentCount {
		return fmt.Errorf("%w: installment index out of range", ErrValidation)
	}
	if t.InstallmentCount > 1 && strings.TrimSpace(t.CardID) == "" {
		return ErrInstallmentsNoCard
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.OwnerID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.OwnerID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.LimitAmount.Cents < 0 {
		return ErrNegativeLimit
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidClosingDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

func (r RecurringExpense) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.OwnerID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents < 0 {
		return ErrNegativeTarget
	}
	return nil
}

func (s SavingsTransaction) Validate() error {
	if strings.TrimSpace(s.OwnerID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(s.GoalID) == "" {
		return ErrMissingGoal
	}
	if s.Type != Deposit && s.Type != Withdraw {
		return ErrInvalidType
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	return s.Date.Validate()
}

// Signed returns the balance contribution of a savings movement.
func (s SavingsTransaction) Signed() Money {
	if s.Type == Withdraw {
		return Money{Cents: -s.Amount.Cents}
	}
	return s.Amount
}
