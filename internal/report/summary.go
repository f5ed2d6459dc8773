// Package report rolls snapshots up into period-scoped summaries: monthly
// totals, category breakdowns, card utilization and savings balances.
// Every function is pure over the snapshot it is given.
package report

import (
	"sort"

	"grana/internal/core"
	"grana/internal/invoice"
	"grana/internal/store"
)

// Uncategorized is the bucket for expenses whose category reference is
// missing or dangling. Reference misses are soft: they reroute to this
// bucket, they never fail the aggregation.
const Uncategorized = "uncategorized"

type (
	// CardUsage compares one card's statement total for the reference
	// period against its limit.
	CardUsage struct {
		CardID    string     `json:"card_id"`
		Name      string     `json:"name"`
		Used      core.Money `json:"used"`
		Limit     core.Money `json:"limit"`
		Available core.Money `json:"available"`
	}

	// Summary is the dashboard view of one calendar month.
	Summary struct {
		Period  invoice.Period `json:"period"`
		Income  core.Money     `json:"income"`
		Expense core.Money     `json:"expense"`
		// NetBalance is cumulative through the end of the reference
		// month: all income minus all expense minus net savings
		// deposits, not a monthly delta.
		NetBalance core.Money  `json:"net_balance"`
		Cards      []CardUsage `json:"cards"`
	}

	// CategoryTotal is one slice of the category breakdown.
	CategoryTotal struct {
		CategoryID string     `json:"category_id,omitempty"`
		Name       string     `json:"name"`
		Icon       string     `json:"icon,omitempty"`
		Color      string     `json:"color,omitempty"`
		Total      core.Money `json:"total"`
		// Share of the grand total, 0..1.
		Share float64 `json:"share"`
	}

	// GoalStatus is one savings goal with its derived balance.
	GoalStatus struct {
		Goal    core.SavingsGoal `json:"goal"`
		Balance core.Money       `json:"balance"`
		// Percent of target reached; negative balances stay negative,
		// presentation may clamp.
		Percent float64 `json:"percent"`
	}

	// SavingsSummary covers all goals of one owner.
	SavingsSummary struct {
		Goals      []GoalStatus `json:"goals"`
		TotalSaved core.Money   `json:"total_saved"`
	}

	// DayTotal is one point of the trailing expense series.
	DayTotal struct {
		Date  core.Date  `json:"date"`
		Total core.Money `json:"total"`
	}
)

// MonthSummary computes the dashboard numbers for the calendar month
// containing ref. Active recurring expenses count once per queried month
// in full, regardless of their day of month.
func MonthSummary(ref core.Date, snap *store.Snapshot) (Summary, error) {
	if err := ref.Validate(); err != nil {
		return Summary{}, err
	}

	s := Summary{Period: invoice.PeriodOf(ref), Cards: []CardUsage{}}
	endOfMonth := ref.EndOfMonth()

	var cumulative int64
	for _, tx := range snap.Transactions {
		inMonth := tx.Date.SameMonth(ref)
		switch tx.Type {
		case core.Income:
			if inMonth {
				s.Income = s.Income.Add(tx.Amount)
			}
			if !tx.Date.After(endOfMonth) {
				cumulative += tx.Amount.Cents
			}
		case core.Expense:
			if inMonth {
				s.Expense = s.Expense.Add(tx.Amount)
			}
			if !tx.Date.After(endOfMonth) {
				cumulative -= tx.Amount.Cents
			}
		}
	}

	// Recurring templates carry no history, so the cumulative balance
	// counts them for the reference month only.
	for _, re := range snap.Recurring {
		if !re.Active {
			continue
		}
		s.Expense = s.Expense.Add(re.Amount)
		cumulative -= re.Amount.Cents
	}

	for _, mv := range snap.SavingsTransactions {
		if !mv.Date.After(endOfMonth) {
			cumulative -= mv.Signed().Cents
		}
	}
	s.NetBalance = core.Money{Cents: cumulative}

	for _, card := range snap.Cards {
		st, err := invoice.ItemsFor(card, s.Period, snap.Transactions, snap.Recurring)
		if err != nil {
			return Summary{}, err
		}
		s.Cards = append(s.Cards, CardUsage{
			CardID:    card.ID,
			Name:      card.Name,
			Used:      st.Total,
			Limit:     card.LimitAmount,
			Available: core.Money{Cents: card.LimitAmount.Cents - st.Total.Cents},
		})
	}

	return s, nil
}

// CategoryBreakdown groups the month's expense transactions and all
// active recurring expenses by category, descending by total. Dangling
// category references land in the "uncategorized" bucket.
func CategoryBreakdown(ref core.Date, snap *store.Snapshot) ([]CategoryTotal, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	totals := map[string]int64{}
	add := func(categoryID string, cents int64) {
		if _, ok := snap.CategoryByID(categoryID); !ok {
			categoryID = ""
		}
		totals[categoryID] += cents
	}

	for _, tx := range snap.Transactions {
		if tx.Type != core.Expense || !tx.Date.SameMonth(ref) {
			continue
		}
		add(tx.CategoryID, tx.Amount.Cents)
	}
	for _, re := range snap.Recurring {
		if !re.Active {
			continue
		}
		add(re.CategoryID, re.Amount.Cents)
	}

	var grand int64
	for _, cents := range totals {
		grand += cents
	}

	out := make([]CategoryTotal, 0, len(totals))
	for id, cents := range totals {
		ct := CategoryTotal{CategoryID: id, Name: Uncategorized, Total: core.Money{Cents: cents}}
		if cat, ok := snap.CategoryByID(id); ok {
			ct.Name = cat.Name
			ct.Icon = cat.Icon
			ct.Color = cat.Color
		}
		if grand > 0 {
			ct.Share = float64(cents) / float64(grand)
		}
		out = append(out, ct)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// SavingsGoalBalance sums the signed movements of one goal. The result is
// the true signed value; it is never clamped here.
func SavingsGoalBalance(goalID string, movements []core.SavingsTransaction) core.Money {
	var cents int64
	for _, mv := range movements {
		if mv.GoalID == goalID {
			cents += mv.Signed().Cents
		}
	}
	return core.Money{Cents: cents}
}

// SavingsOverview derives every goal's balance and progress.
func SavingsOverview(snap *store.Snapshot) SavingsSummary {
	out := SavingsSummary{Goals: []GoalStatus{}}
	for _, goal := range snap.SavingsGoals {
		balance := SavingsGoalBalance(goal.ID, snap.SavingsTransactions)
		gs := GoalStatus{Goal: goal, Balance: balance}
		if goal.TargetAmount.Cents > 0 {
			gs.Percent = float64(balance.Cents) / float64(goal.TargetAmount.Cents)
		}
		out.Goals = append(out.Goals, gs)
		out.TotalSaved = out.TotalSaved.Add(balance)
	}
	return out
}

// DailyExpenseSeries returns expense totals for the trailing day window
// ending at ref, one point per calendar day, oldest first.
func DailyExpenseSeries(ref core.Date, days int, txs []core.Transaction) []DayTotal {
	if days < 1 {
		return []DayTotal{}
	}

	byDay := map[string]int64{}
	for _, tx := range txs {
		if tx.Type == core.Expense {
			byDay[tx.Date.ISO()] += tx.Amount.Cents
		}
	}

	out := make([]DayTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := core.Date{Time: ref.Time.AddDate(0, 0, -i)}
		out = append(out, DayTotal{Date: day, Total: core.Money{Cents: byDay[day.ISO()]}})
	}
	return out
}
