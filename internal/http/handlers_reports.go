package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"grana/internal/core"
	"grana/internal/invoice"
)

// refDate builds the reference date for month-scoped reports from the
// year/month query parameters. Day 1 is enough; the engines only look at
// the month.
func refDate(r *http.Request) (core.Date, error) {
	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		return core.Date{}, fmt.Errorf("%w: month must be between 1 and 12", core.ErrValidation)
	}
	d := core.NewDate(year, month, 1)
	if err := d.Validate(); err != nil {
		return core.Date{}, err
	}
	return d, nil
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ref, err := refDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := s.reports.MonthSummary(r.Context(), owner, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ref, err := refDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	breakdown, err := s.reports.CategoryBreakdown(r.Context(), owner, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleDailySeries(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ref := core.Today()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := core.ParseISODate(v)
		if err != nil {
			writeError(w, err)
			return
		}
		ref = parsed
	}

	days := 30
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}

	series, err := s.reports.DailySeries(r.Context(), owner, ref, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleCardInvoice(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		writeError(w, fmt.Errorf("%w: month must be between 1 and 12", core.ErrValidation))
		return
	}
	statement, err := s.reports.Invoice(r.Context(), owner, r.PathValue("id"), invoice.Period{Month: month, Year: year})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statement)
}

type simulateRequest struct {
	AmountCents  int64  `json:"amount_cents"`
	Installments int    `json:"installments"`
	Date         string `json:"date"`
}

func (s *Server) handleSimulatePurchase(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req simulateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := core.ParseISODate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	charges, err := s.reports.SimulatePurchase(r.Context(), owner, r.PathValue("id"),
		core.Money{Cents: req.AmountCents}, req.Installments, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charges)
}

func (s *Server) handleSavingsOverview(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	overview, err := s.reports.SavingsOverview(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
