package services

import (
	"context"
	"fmt"

	"grana/internal/cache"
	"grana/internal/core"
	"grana/internal/invoice"
	"grana/internal/report"
	"grana/internal/store"
)

// ReportService answers the read-side questions: dashboard summaries,
// category breakdowns, card statements and savings standing. Summaries
// are cached per owner and month; any mutation for the owner drops all
// of that owner's cached entries.
type ReportService struct {
	store store.Store
	cache *cache.LRUCache[report.Summary]
}

func NewReportService(st store.Store, summaryCache *cache.LRUCache[report.Summary]) *ReportService {
	return &ReportService{
		store: st,
		cache: summaryCache,
	}
}

func summaryKey(ownerID string, p invoice.Period) string {
	return ownerID + "|" + p.String()
}

// MonthSummary returns the dashboard summary for the month containing ref.
func (s *ReportService) MonthSummary(ctx context.Context, ownerID string, ref core.Date) (report.Summary, error) {
	key := summaryKey(ownerID, invoice.PeriodOf(ref))
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	snap, err := store.LoadSnapshot(ctx, s.store, ownerID)
	if err != nil {
		return report.Summary{}, err
	}
	sum, err := report.MonthSummary(ref, snap)
	if err != nil {
		return report.Summary{}, err
	}
	if s.cache != nil {
		s.cache.Set(key, sum)
	}
	return sum, nil
}

// CategoryBreakdown returns per-category expense totals for ref's month.
func (s *ReportService) CategoryBreakdown(ctx context.Context, ownerID string, ref core.Date) ([]report.CategoryTotal, error) {
	snap, err := store.LoadSnapshot(ctx, s.store, ownerID)
	if err != nil {
		return nil, err
	}
	return report.CategoryBreakdown(ref, snap)
}

// DailySeries returns the per-day expense totals for the last days
// calendar days ending at ref.
func (s *ReportService) DailySeries(ctx context.Context, ownerID string, ref core.Date, days int) ([]report.DayTotal, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: series length must be positive", core.ErrValidation)
	}
	txs, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return report.DailyExpenseSeries(ref, days, txs), nil
}

// Invoice returns one card's statement for one period.
func (s *ReportService) Invoice(ctx context.Context, ownerID, cardID string, period invoice.Period) (invoice.Statement, error) {
	snap, err := store.LoadSnapshot(ctx, s.store, ownerID)
	if err != nil {
		return invoice.Statement{}, err
	}
	card, ok := snap.CardByID(cardID)
	if !ok {
		return invoice.Statement{}, fmt.Errorf("%w: card %q", store.ErrNotFound, cardID)
	}
	return invoice.ItemsFor(card, period, snap.Transactions, snap.Recurring)
}

// SimulatePurchase projects how a hypothetical installment purchase on a
// card would land across future statements. Nothing is persisted.
func (s *ReportService) SimulatePurchase(ctx context.Context, ownerID, cardID string, total core.Money, installments int, purchase core.Date) ([]invoice.ProjectedCharge, error) {
	cards, err := s.store.ListCards(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, card := range cards {
		if card.ID == cardID {
			return invoice.Project(total, installments, purchase, card.ClosingDay)
		}
	}
	return nil, fmt.Errorf("%w: card %q", store.ErrNotFound, cardID)
}

// SavingsOverview returns every goal's accumulated balance and progress.
func (s *ReportService) SavingsOverview(ctx context.Context, ownerID string) (report.SavingsSummary, error) {
	snap, err := store.LoadSnapshot(ctx, s.store, ownerID)
	if err != nil {
		return report.SavingsSummary{}, err
	}
	return report.SavingsOverview(snap), nil
}

// Invalidate drops every cached view belonging to the owner.
func (s *ReportService) Invalidate(ownerID string) {
	if s.cache != nil {
		s.cache.DeletePrefix(ownerID + "|")
	}
}
