// Package invoice decides which monthly statement a credit-card charge
// belongs to. All rules about closing days, installment expansion and
// invoice composition live here; every view consumes this one
// implementation.
package invoice

import (
	"fmt"

	"grana/internal/core"
)

// Period is the calendar month/year bucket a card statement covers.
type Period struct {
	Month int `json:"month"` // 1-12
	Year  int `json:"year"`
}

// PeriodOf returns the period containing the given date.
func PeriodOf(d core.Date) Period {
	return Period{Month: d.Month(), Year: d.Year()}
}

// Next returns the following calendar month's period.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// InvoiceItem is one line of a card statement.
type InvoiceItem struct {
	Description      string     `json:"description"`
	Amount           core.Money `json:"amount"`
	Date             core.Date  `json:"date"`
	CategoryID       string     `json:"category_id,omitempty"`
	InstallmentLabel string     `json:"installment_label,omitempty"`
	Recurring        bool       `json:"recurring"`
}

// Statement is the full invoice of one card for one period.
type Statement struct {
	CardID string        `json:"card_id"`
	Period Period        `json:"period"`
	Items  []InvoiceItem `json:"items"`
	Total  core.Money    `json:"total"`
}

// PeriodFor maps a charge date to the invoice period it is billed in.
// A charge made on or after the card's closing day cannot appear on the
// statement that has already closed, so it rolls to the next month.
// Closing days past the month's length (31 in February) are clamped to
// the month's last day before comparing.
func PeriodFor(chargeDate core.Date, closingDay int) (Period, error) {
	if closingDay < 1 || closingDay > 31 {
		return Period{}, core.ErrInvalidClosingDay
	}
	if err := chargeDate.Validate(); err != nil {
		return Period{}, err
	}
	effective := closingDay
	if last := core.DaysInMonth(chargeDate.Year(), chargeDate.Month()); effective > last {
		effective = last
	}
	p := PeriodOf(chargeDate)
	if chargeDate.Day() >= effective {
		return p.Next(), nil
	}
	return p, nil
}

// ExpandInstallments materializes a multi-installment purchase into its
// per-month shares. The input carries the total amount; each share gets
// total/N cents with the division remainder absorbed by the first share,
// so the shares always sum exactly to the total. Share i is dated i-1
// calendar months after the purchase date, day clamped to shorter months.
//
// This runs once at creation time; installments are persisted as
// independent records and never re-derived on read.
func ExpandInstallments(tx core.Transaction) ([]core.Transaction, error) {
	if tx.InstallmentIndex == 0 {
		tx.InstallmentIndex = 1
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	n := int64(tx.InstallmentCount)
	share := tx.Amount.Cents / n
	first := tx.Amount.Cents - share*(n-1)
	if share <= 0 {
		return nil, fmt.Errorf("%w: amount too small to split into %d installments", core.ErrValidation, n)
	}

	out := make([]core.Transaction, tx.InstallmentCount)
	for i := range out {
		out[i] = tx
		out[i].ID = ""
		out[i].Amount = core.Money{Cents: share}
		if i == 0 {
			out[i].Amount = core.Money{Cents: first}
		}
		out[i].Date = tx.Date.AddMonths(i)
		out[i].InstallmentIndex = i + 1
	}
	return out, nil
}

// ItemsFor collects the invoice of one card for one period: every expense
// transaction of that card whose PeriodFor lands in the period, plus every
// active recurring expense bound to the card. Recurring charges repeat on
// every statement while active, so they are never date-filtered.
func ItemsFor(card core.CreditCard, period Period, txs []core.Transaction, recurring []core.RecurringExpense) (Statement, error) {
	if err := card.Validate(); err != nil {
		return Statement{}, err
	}

	st := Statement{CardID: card.ID, Period: period, Items: []InvoiceItem{}}
	for _, tx := range txs {
		if tx.CardID != card.ID || tx.Type != core.Expense {
			continue
		}
		p, err := PeriodFor(tx.Date, card.ClosingDay)
		if err != nil {
			return Statement{}, fmt.Errorf("allocate %q: %w", tx.Description, err)
		}
		if p != period {
			continue
		}
		item := InvoiceItem{
			Description: tx.Description,
			Amount:      tx.Amount,
			Date:        tx.Date,
			CategoryID:  tx.CategoryID,
		}
		if tx.InstallmentCount > 1 {
			item.InstallmentLabel = fmt.Sprintf("%d/%d", tx.InstallmentIndex, tx.InstallmentCount)
		}
		st.Items = append(st.Items, item)
		st.Total = st.Total.Add(tx.Amount)
	}

	for _, re := range recurring {
		if re.CardID != card.ID || !re.Active {
			continue
		}
		day := re.DayOfMonth
		if last := core.DaysInMonth(period.Year, period.Month); day > last {
			day = last
		}
		st.Items = append(st.Items, InvoiceItem{
			Description: re.Description,
			Amount:      re.Amount,
			Date:        core.NewDate(period.Year, period.Month, day),
			CategoryID:  re.CategoryID,
			Recurring:   true,
		})
		st.Total = st.Total.Add(re.Amount)
	}

	return st, nil
}

// ProjectedCharge is one future statement impacted by a simulated purchase.
type ProjectedCharge struct {
	Period Period     `json:"period"`
	Amount core.Money `json:"amount"`
}

// Project simulates the statement impact of splitting a purchase into
// installments on a given card, without persisting anything. Shares that
// land in the same invoice period are merged.
func Project(total core.Money, installments int, purchase core.Date, closingDay int) ([]ProjectedCharge, error) {
	shares, err := ExpandInstallments(core.Transaction{
		OwnerID:          "simulation",
		Type:             core.Expense,
		Description:      "simulation",
		Amount:           total,
		Date:             purchase,
		CardID:           "simulation",
		InstallmentCount: installments,
	})
	if err != nil {
		return nil, err
	}

	var out []ProjectedCharge
	for _, share := range shares {
		p, err := PeriodFor(share.Date, closingDay)
		if err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].Period == p {
			out[n-1].Amount = out[n-1].Amount.Add(share.Amount)
			continue
		}
		out = append(out, ProjectedCharge{Period: p, Amount: share.Amount})
	}
	return out, nil
}
