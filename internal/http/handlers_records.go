package http

import (
	"net/http"

	"grana/internal/core"
	"grana/internal/store"
)

type createTransactionRequest struct {
	Type         string `json:"type"`
	Description  string `json:"description"`
	AmountCents  int64  `json:"amount_cents"`
	Date         string `json:"date"`
	CategoryID   string `json:"category_id,omitempty"`
	CardID       string `json:"card_id,omitempty"`
	Installments int    `json:"installments,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createTransactionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := core.ParseISODate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	installments := req.Installments
	if installments == 0 {
		installments = 1
	}

	saved, err := s.finance.AddTransaction(r.Context(), core.Transaction{
		OwnerID:          owner,
		Type:             core.TransactionType(req.Type),
		Description:      sanitizeInput(req.Description),
		Amount:           core.Money{Cents: req.AmountCents},
		Date:             date,
		CategoryID:       req.CategoryID,
		CardID:           req.CardID,
		InstallmentCount: installments,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	txs, err := s.finance.ListTransactions(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type updateTransactionRequest struct {
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
	Date        *string `json:"date,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	CardID      *string `json:"card_id,omitempty"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateTransactionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	patch := store.TransactionPatch{
		Description: req.Description,
		CategoryID:  req.CategoryID,
		CardID:      req.CardID,
	}
	if req.Type != nil {
		tt := core.TransactionType(*req.Type)
		patch.Type = &tt
	}
	if req.AmountCents != nil {
		patch.Amount = &core.Money{Cents: *req.AmountCents}
	}
	if req.Date != nil {
		date, err := core.ParseISODate(*req.Date)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.Date = &date
	}

	if err := s.finance.UpdateTransaction(r.Context(), owner, r.PathValue("id"), patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.finance.DeleteTransaction(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req categoryRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.finance.AddCategory(r.Context(), core.Category{
		OwnerID: owner,
		Name:    sanitizeInput(req.Name),
		Icon:    req.Icon,
		Color:   req.Color,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cats, err := s.finance.ListCategories(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

type updateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateCategoryRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch := store.CategoryPatch{Name: req.Name, Icon: req.Icon, Color: req.Color}
	if err := s.finance.UpdateCategory(r.Context(), owner, r.PathValue("id"), patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.finance.DeleteCategory(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type cardRequest struct {
	Name       string `json:"name"`
	LimitCents int64  `json:"limit_cents"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req cardRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.finance.AddCard(r.Context(), core.CreditCard{
		OwnerID:     owner,
		Name:        sanitizeInput(req.Name),
		LimitAmount: core.Money{Cents: req.LimitCents},
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cards, err := s.finance.ListCards(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

type updateCardRequest struct {
	Name       *string `json:"name,omitempty"`
	LimitCents *int64  `json:"limit_cents,omitempty"`
	ClosingDay *int    `json:"closing_day,omitempty"`
	DueDay     *int    `json:"due_day,omitempty"`
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateCardRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch := store.CardPatch{
		Name:       req.Name,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}
	if req.LimitCents != nil {
		patch.LimitAmount = &core.Money{Cents: *req.LimitCents}
	}
	if err := s.finance.UpdateCard(r.Context(), owner, r.PathValue("id"), patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.finance.DeleteCard(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type recurringRequest struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	DayOfMonth  int    `json:"day_of_month"`
	CategoryID  string `json:"category_id,omitempty"`
	CardID      string `json:"card_id,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req recurringRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	saved, err := s.finance.AddRecurring(r.Context(), core.RecurringExpense{
		OwnerID:     owner,
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: req.AmountCents},
		DayOfMonth:  req.DayOfMonth,
		CategoryID:  req.CategoryID,
		CardID:      req.CardID,
		Active:      active,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	recs, err := s.finance.ListRecurring(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type updateRecurringRequest struct {
	Description *string `json:"description,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
	DayOfMonth  *int    `json:"day_of_month,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	CardID      *string `json:"card_id,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateRecurringRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch := store.RecurringPatch{
		Description: req.Description,
		DayOfMonth:  req.DayOfMonth,
		CategoryID:  req.CategoryID,
		CardID:      req.CardID,
		Active:      req.Active,
	}
	if req.AmountCents != nil {
		patch.Amount = &core.Money{Cents: *req.AmountCents}
	}
	if err := s.finance.UpdateRecurring(r.Context(), owner, r.PathValue("id"), patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.finance.DeleteRecurring(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type goalRequest struct {
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	TargetCents int64  `json:"target_cents"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req goalRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.finance.AddSavingsGoal(r.Context(), core.SavingsGoal{
		OwnerID:      owner,
		Name:         sanitizeInput(req.Name),
		Icon:         req.Icon,
		Color:        req.Color,
		TargetAmount: core.Money{Cents: req.TargetCents},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	goals, err := s.finance.ListSavingsGoals(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

type updateGoalRequest struct {
	Name        *string `json:"name,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	TargetCents *int64  `json:"target_cents,omitempty"`
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateGoalRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch := store.SavingsGoalPatch{Name: req.Name, Icon: req.Icon, Color: req.Color}
	if req.TargetCents != nil {
		patch.TargetAmount = &core.Money{Cents: *req.TargetCents}
	}
	if err := s.finance.UpdateSavingsGoal(r.Context(), owner, r.PathValue("id"), patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.finance.DeleteSavingsGoal(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type savingsTransactionRequest struct {
	GoalID      string `json:"goal_id"`
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleCreateSavingsTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req savingsTransactionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := core.ParseISODate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.finance.AddSavingsTransaction(r.Context(), core.SavingsTransaction{
		OwnerID:     owner,
		GoalID:      req.GoalID,
		Type:        core.SavingsTxType(req.Type),
		Amount:      core.Money{Cents: req.AmountCents},
		Date:        date,
		Description: sanitizeInput(req.Description),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListSavingsTransactions(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	movements, err := s.finance.ListSavingsTransactions(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}

func (s *Server) handleDeleteSavingsTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.finance.DeleteSavingsTransaction(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
