package http

import (
	"net/http"

	"masareef/internal/log"
	"masareef/internal/report"
)

type categoryTotalJSON struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

func toCategoryTotals(in []report.CategoryTotal) []categoryTotalJSON {
	out := make([]categoryTotalJSON, 0, len(in))
	for _, ct := range in {
		out = append(out, categoryTotalJSON{Category: ct.Category, Total: ct.Total.String()})
	}
	return out
}

type dashboardResponse struct {
	FullName        string              `json:"full_name"`
	MonthlyIncome   string              `json:"monthly_income"`
	TotalSpend      string              `json:"total_spend"`
	CurrentMonth    string              `json:"current_month"`
	ExpectedSavings string              `json:"expected_savings"`
	ByCategory      []categoryTotalJSON `json:"by_category"`
	RecentExpenses  []expenseResponse   `json:"recent_expenses"`
	GoalCount       int                 `json:"goal_count"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	d, err := s.reports.Dashboard(r.Context(), ownerID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard assembly failed",
			log.FieldOwnerID, ownerID,
			log.FieldError, err)
		respondStoreError(w, err)
		return
	}

	recent := make([]expenseResponse, 0, len(d.RecentExpenses))
	for _, e := range d.RecentExpenses {
		recent = append(recent, toExpenseResponse(e))
	}

	respondJSON(w, http.StatusOK, dashboardResponse{
		FullName:        d.Profile.FullName,
		MonthlyIncome:   d.Profile.MonthlyIncome.String(),
		TotalSpend:      d.TotalSpend.String(),
		CurrentMonth:    d.CurrentMonth.String(),
		ExpectedSavings: d.ExpectedSavings.String(),
		ByCategory:      toCategoryTotals(d.ByCategory),
		RecentExpenses:  recent,
		GoalCount:       d.GoalCount,
	})
}

type monthlyPointJSON struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
}

type categoryTrendJSON struct {
	Category string `json:"category"`
	Current  string `json:"current"`
	Previous string `json:"previous"`
}

type reportResponse struct {
	Series []monthlyPointJSON  `json:"series"`
	Trends []categoryTrendJSON `json:"trends"`
	Stats  struct {
		SavingsIncrease  float64 `json:"savings_increase"`
		ExpenseDecrease  float64 `json:"expense_decrease"`
		BudgetCompliance float64 `json:"budget_compliance"`
	} `json:"stats"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	rep, err := s.reports.Report(r.Context(), ownerID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Report assembly failed",
			log.FieldOwnerID, ownerID,
			log.FieldError, err)
		respondStoreError(w, err)
		return
	}

	var resp reportResponse
	resp.Series = make([]monthlyPointJSON, 0, len(rep.Series))
	for _, p := range rep.Series {
		resp.Series = append(resp.Series, monthlyPointJSON{
			Year:     p.Year,
			Month:    p.Month,
			Income:   p.Income.String(),
			Expenses: p.Expenses.String(),
		})
	}
	resp.Trends = make([]categoryTrendJSON, 0, len(rep.Trends))
	for _, tr := range rep.Trends {
		resp.Trends = append(resp.Trends, categoryTrendJSON{
			Category: tr.Category,
			Current:  tr.Current.String(),
			Previous: tr.Previous.String(),
		})
	}
	resp.Stats.SavingsIncrease = rep.Headline.SavingsIncrease
	resp.Stats.ExpenseDecrease = rep.Headline.ExpenseDecrease
	resp.Stats.BudgetCompliance = rep.Headline.BudgetCompliance

	respondJSON(w, http.StatusOK, resp)
}

type insightJSON struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())
	list, err := s.reports.Insights(r.Context(), ownerID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Insight generation failed",
			log.FieldOwnerID, ownerID,
			log.FieldError, err)
		respondStoreError(w, err)
		return
	}

	out := make([]insightJSON, 0, len(list))
	for _, in := range list {
		out = append(out, insightJSON{
			Type:        string(in.Severity),
			Title:       in.Title,
			Description: in.Description,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
