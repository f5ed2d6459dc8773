package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"grana/internal/cache"
	"grana/internal/core"
	"grana/internal/events"
	"grana/internal/invoice"
	"grana/internal/memory"
	"grana/internal/report"
	"grana/internal/store"
)

type fakePublisher struct {
	published []*events.RecordChangeMessage
	fail      bool
}

func (p *fakePublisher) PublishRecordChange(_ context.Context, msg *events.RecordChangeMessage) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, msg)
	return nil
}

func newTestService(pub events.Publisher) (*FinanceService, *ReportService, store.Store) {
	st := memory.New()
	reports := NewReportService(st, cache.NewLRUCache[report.Summary](64, time.Minute))
	return NewFinanceService(st, pub, reports), reports, st
}

func TestAddTransactionExpandsInstallments(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _, st := newTestService(pub)

	card, err := svc.AddCard(ctx, core.CreditCard{OwnerID: "u1", Name: "Visa", LimitAmount: core.Money{Cents: 500000}, ClosingDay: 15, DueDay: 22})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}

	saved, err := svc.AddTransaction(ctx, core.Transaction{
		OwnerID:          "u1",
		Type:             core.Expense,
		Description:      "notebook",
		Amount:           core.Money{Cents: 10000},
		Date:             core.NewDate(2025, 1, 31),
		CardID:           card.ID,
		InstallmentCount: 3,
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(saved))
	}

	var total int64
	for _, tx := range saved {
		total += tx.Amount.Cents
	}
	if total != 10000 {
		t.Fatalf("installments sum to %d, want 10000", total)
	}
	if saved[1].Date.ISO() != "2025-02-28" {
		t.Fatalf("second installment date = %s", saved[1].Date.ISO())
	}

	stored, _ := st.ListTransactions(ctx, "u1")
	if len(stored) != 3 {
		t.Fatalf("store holds %d records", len(stored))
	}
	// One message per persisted record, plus the card.
	if len(pub.published) != 4 {
		t.Fatalf("published %d messages", len(pub.published))
	}
}

func TestAddTransactionSurvivesBrokerOutage(t *testing.T) {
	ctx := context.Background()
	svc, _, st := newTestService(&fakePublisher{fail: true})

	_, err := svc.AddTransaction(ctx, core.Transaction{
		OwnerID:     "u1",
		Type:        core.Income,
		Description: "salário",
		Amount:      core.Money{Cents: 500000},
		Date:        core.NewDate(2025, 3, 1),
	})
	if err != nil {
		t.Fatalf("add transaction failed on broker outage: %v", err)
	}
	stored, _ := st.ListTransactions(ctx, "u1")
	if len(stored) != 1 {
		t.Fatalf("transaction not persisted")
	}
}

func TestAddTransactionRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(nil)

	_, err := svc.AddTransaction(ctx, core.Transaction{
		OwnerID:     "u1",
		Type:        core.Expense,
		Description: "sem valor",
		Amount:      core.Money{Cents: 0},
		Date:        core.NewDate(2025, 3, 1),
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Installments without a card are meaningless.
	_, err = svc.AddTransaction(ctx, core.Transaction{
		OwnerID:          "u1",
		Type:             core.Expense,
		Description:      "parcelado sem cartão",
		Amount:           core.Money{Cents: 10000},
		Date:             core.NewDate(2025, 3, 1),
		InstallmentCount: 3,
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdatePatchValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(nil)

	card, err := svc.AddCard(ctx, core.CreditCard{OwnerID: "u1", Name: "Visa", LimitAmount: core.Money{Cents: 100000}, ClosingDay: 10, DueDay: 17})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}

	bad := 0
	if err := svc.UpdateCard(ctx, "u1", card.ID, store.CardPatch{ClosingDay: &bad}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	good := 20
	if err := svc.UpdateCard(ctx, "u1", card.ID, store.CardPatch{ClosingDay: &good}); err != nil {
		t.Fatalf("valid patch rejected: %v", err)
	}

	// Zero is a legal limit and a legal target, negative is not.
	zero := core.Money{Cents: 0}
	if err := svc.UpdateCard(ctx, "u1", card.ID, store.CardPatch{LimitAmount: &zero}); err != nil {
		t.Fatalf("zero limit rejected: %v", err)
	}
	negative := core.Money{Cents: -1}
	if err := svc.UpdateCard(ctx, "u1", card.ID, store.CardPatch{LimitAmount: &negative}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	goal, err := svc.AddSavingsGoal(ctx, core.SavingsGoal{OwnerID: "u1", Name: "Viagem", TargetAmount: core.Money{Cents: 100000}})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}
	if err := svc.UpdateSavingsGoal(ctx, "u1", goal.ID, store.SavingsGoalPatch{TargetAmount: &zero}); err != nil {
		t.Fatalf("zero target rejected: %v", err)
	}
	if err := svc.UpdateSavingsGoal(ctx, "u1", goal.ID, store.SavingsGoalPatch{TargetAmount: &negative}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMonthSummaryCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	svc, reports, _ := newTestService(nil)

	ref := core.NewDate(2025, 5, 15)
	_, err := svc.AddTransaction(ctx, core.Transaction{
		OwnerID: "u1", Type: core.Income, Description: "salário",
		Amount: core.Money{Cents: 300000}, Date: core.NewDate(2025, 5, 1),
	})
	if err != nil {
		t.Fatalf("add income: %v", err)
	}

	first, err := reports.MonthSummary(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if first.Income.Cents != 300000 {
		t.Fatalf("income = %d", first.Income.Cents)
	}

	// A mutation through the service must drop the cached summary.
	_, err = svc.AddTransaction(ctx, core.Transaction{
		OwnerID: "u1", Type: core.Expense, Description: "mercado",
		Amount: core.Money{Cents: 40000}, Date: core.NewDate(2025, 5, 10),
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	second, err := reports.MonthSummary(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("summary after mutation: %v", err)
	}
	if second.Expense.Cents != 40000 {
		t.Fatalf("stale summary served: %+v", second)
	}
}

func TestCreationsRefreshCachedSummary(t *testing.T) {
	ctx := context.Background()
	svc, reports, _ := newTestService(nil)

	ref := core.NewDate(2025, 7, 15)
	before, err := reports.MonthSummary(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(before.Cards) != 0 {
		t.Fatalf("expected no cards, got %d", len(before.Cards))
	}

	// Creating a card must drop the cached summary, same as any other
	// summary-affecting mutation.
	card, err := svc.AddCard(ctx, core.CreditCard{OwnerID: "u1", Name: "Visa", LimitAmount: core.Money{Cents: 300000}, ClosingDay: 10, DueDay: 17})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}
	after, err := reports.MonthSummary(ctx, "u1", ref)
	if err != nil {
		t.Fatalf("summary after card: %v", err)
	}
	if len(after.Cards) != 1 || after.Cards[0].CardID != card.ID {
		t.Fatalf("added card missing from summary: %+v", after.Cards)
	}

	if _, err := svc.AddCategory(ctx, core.Category{OwnerID: "u1", Name: "Casa"}); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if _, err := svc.AddSavingsGoal(ctx, core.SavingsGoal{OwnerID: "u1", Name: "Reserva", TargetAmount: core.Money{Cents: 500000}}); err != nil {
		t.Fatalf("add goal: %v", err)
	}
	overview, err := reports.SavingsOverview(ctx, "u1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.Goals) != 1 {
		t.Fatalf("added goal missing from overview: %+v", overview)
	}
}

func TestInvoiceAndSimulation(t *testing.T) {
	ctx := context.Background()
	svc, reports, _ := newTestService(nil)

	card, err := svc.AddCard(ctx, core.CreditCard{OwnerID: "u1", Name: "Nubank", LimitAmount: core.Money{Cents: 200000}, ClosingDay: 15, DueDay: 22})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}
	_, err = svc.AddTransaction(ctx, core.Transaction{
		OwnerID: "u1", Type: core.Expense, Description: "jantar",
		Amount: core.Money{Cents: 15000}, Date: core.NewDate(2025, 3, 20), CardID: card.ID,
	})
	if err != nil {
		t.Fatalf("add charge: %v", err)
	}

	// Charged after the closing day, so it bills on the April statement.
	april, err := reports.Invoice(ctx, "u1", card.ID, invoice.Period{Month: 4, Year: 2025})
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if len(april.Items) != 1 || april.Total.Cents != 15000 {
		t.Fatalf("april statement = %+v", april)
	}
	march, err := reports.Invoice(ctx, "u1", card.ID, invoice.Period{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if len(march.Items) != 0 {
		t.Fatalf("march statement should be empty: %+v", march)
	}

	charges, err := reports.SimulatePurchase(ctx, "u1", card.ID, core.Money{Cents: 90000}, 3, core.NewDate(2025, 3, 20))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var total int64
	for _, c := range charges {
		total += c.Amount.Cents
	}
	if total != 90000 {
		t.Fatalf("projected charges sum to %d", total)
	}

	if _, err := reports.SimulatePurchase(ctx, "u1", "missing", core.Money{Cents: 1000}, 2, core.NewDate(2025, 3, 1)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := reports.Invoice(ctx, "u1", "missing", invoice.Period{Month: 3, Year: 2025}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteCategoryDegradesBreakdown(t *testing.T) {
	ctx := context.Background()
	svc, reports, _ := newTestService(nil)

	cat, err := svc.AddCategory(ctx, core.Category{OwnerID: "u1", Name: "Lazer", Icon: "🎮", Color: "#00ff00"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	_, err = svc.AddTransaction(ctx, core.Transaction{
		OwnerID: "u1", Type: core.Expense, Description: "cinema",
		Amount: core.Money{Cents: 6000}, Date: core.NewDate(2025, 6, 7), CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}

	if err := svc.DeleteCategory(ctx, "u1", cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	breakdown, err := reports.CategoryBreakdown(ctx, "u1", core.NewDate(2025, 6, 30))
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(breakdown) != 1 || breakdown[0].Name != report.Uncategorized {
		t.Fatalf("orphaned expense not bucketed: %+v", breakdown)
	}
}
