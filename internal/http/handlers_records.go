package http

import (
	"net/http"
	"time"

	"masareef/internal/core"
	"masareef/internal/log"
)

const dateLayout = "2006-01-02"

type expenseRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

type expenseResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:       e.ID,
		Name:     e.Name,
		Category: e.Category,
		Amount:   e.Amount.String(),
		Date:     e.Date.Format(dateLayout),
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	list, err := s.records.ListExpenses(r.Context(), ownerID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List expenses failed", log.FieldError, err)
		respondStoreError(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toExpenseResponse(e))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}

	e := core.Expense{
		OwnerID:  ownerFromContext(r.Context()),
		Name:     req.Name,
		Category: req.Category,
		Amount:   core.Money{Cents: cents},
		Date:     core.DateOf(date),
	}
	saved, err := s.records.CreateExpense(r.Context(), e)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toExpenseResponse(saved))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	if err := s.records.DeleteExpense(r.Context(), ownerID, r.PathValue("id")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type goalRequest struct {
	Name           string `json:"name"`
	Target         string `json:"target"`
	Current        string `json:"current"`
	DurationMonths int    `json:"duration_months"`
}

type goalResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Target         string `json:"target"`
	Current        string `json:"current"`
	DurationMonths int    `json:"duration_months"`
}

func toGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:             g.ID,
		Name:           g.Name,
		Target:         g.Target.String(),
		Current:        g.Current.String(),
		DurationMonths: g.DurationMonths,
	}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	list, err := s.records.ListGoals(r.Context(), ownerID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List goals failed", log.FieldError, err)
		respondStoreError(w, err)
		return
	}
	out := make([]goalResponse, 0, len(list))
	for _, g := range list {
		out = append(out, toGoalResponse(g))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	target, err := core.ParseDecimalToCents(req.Target)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid target amount")
		return
	}
	var current int64
	if req.Current != "" {
		current, err = core.ParseDecimalToCents(req.Current)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid current amount")
			return
		}
	}

	g := core.Goal{
		OwnerID:        ownerFromContext(r.Context()),
		Name:           req.Name,
		Target:         core.Money{Cents: target},
		Current:        core.Money{Cents: current},
		DurationMonths: req.DurationMonths,
	}
	saved, err := s.records.CreateGoal(r.Context(), g)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGoalResponse(saved))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	if err := s.records.DeleteGoal(r.Context(), ownerID, r.PathValue("id")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type profileRequest struct {
	FullName      string `json:"full_name"`
	MonthlyIncome string `json:"monthly_income"`
}

type profileResponse struct {
	FullName      string `json:"full_name"`
	MonthlyIncome string `json:"monthly_income"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	p, err := s.records.GetProfile(r.Context(), ownerID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profileResponse{
		FullName:      p.FullName,
		MonthlyIncome: p.MonthlyIncome.String(),
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	var income int64
	if req.MonthlyIncome != "" {
		var err error
		income, err = core.ParseDecimalToCents(req.MonthlyIncome)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid monthly income")
			return
		}
	}

	p := core.Profile{
		OwnerID:       ownerFromContext(r.Context()),
		FullName:      req.FullName,
		MonthlyIncome: core.Money{Cents: income},
	}
	if err := s.records.UpdateProfile(r.Context(), p); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profileResponse{
		FullName:      p.FullName,
		MonthlyIncome: p.MonthlyIncome.String(),
	})
}

type notificationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	list, err := s.records.ListNotifications(r.Context(), ownerID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, notificationResponse{
			ID:          n.ID,
			Type:        string(n.Severity),
			Title:       n.Title,
			Description: n.Description,
			CreatedAt:   n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	if err := s.records.ResetAll(r.Context(), ownerID); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Data reset failed",
			log.FieldOwnerID, ownerID,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "reset incomplete: "+err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
