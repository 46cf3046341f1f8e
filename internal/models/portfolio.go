package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const recentLoansLimit = 5

// PortfolioMetrics is the back-office dashboard over every loan
type PortfolioMetrics struct {
	AsOf                  time.Time            `json:"as_of"`
	ActiveLoans           int                  `json:"active_loans"`
	TotalPortfolio        decimal.Decimal      `json:"total_portfolio"`
	DefaultRate           decimal.Decimal      `json:"default_rate"`
	AverageLTV            decimal.Decimal      `json:"average_ltv"`
	OverduePayments       int                  `json:"overdue_payments"`
	OverdueAmount         decimal.Decimal      `json:"overdue_amount"`
	MonthlyInterestIncome decimal.Decimal      `json:"monthly_interest_income"`
	PendingApprovals      int                  `json:"pending_approvals"`
	LoansByStatus         map[LoanStatus]int   `json:"loans_by_status"`
	LoansByDepartment     []DepartmentExposure `json:"loans_by_department"`
	RecentLoans           []RecentLoan         `json:"recent_loans"`
}

// DepartmentExposure groups active lending by the department of the collateral
type DepartmentExposure struct {
	Department string          `json:"department"`
	Loans      int             `json:"loans"`
	Amount     decimal.Decimal `json:"amount"`
}

// RecentLoan is a dashboard line for a newly created loan
type RecentLoan struct {
	ID         uuid.UUID       `json:"id"`
	LoanNumber string          `json:"loan_number"`
	Status     LoanStatus      `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CalculatePortfolioMetrics aggregates loans as of the given date.
// Schedule, Payments and Collateral should be loaded; missing relations count as empty.
//
// The default rate is Defaulted plus LegalReady loans over every loan past Draft.
// Overdue amounts are principal plus interest of unpaid installments due before asOf.
// Interest income counts Interest payments dated from the first of asOf's month.
func CalculatePortfolioMetrics(loans []*Loan, asOf time.Time) *PortfolioMetrics {
	asOf = Date(asOf)
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)

	m := &PortfolioMetrics{
		AsOf:                  asOf,
		TotalPortfolio:        decimal.Zero,
		DefaultRate:           decimal.Zero,
		AverageLTV:            decimal.Zero,
		OverdueAmount:         decimal.Zero,
		MonthlyInterestIncome: decimal.Zero,
		LoansByStatus:         make(map[LoanStatus]int),
		LoansByDepartment:     []DepartmentExposure{},
		RecentLoans:           []RecentLoan{},
	}

	var (
		ltvSum     = decimal.Zero
		defaulted  int
		submitted  int
		department = make(map[string]*DepartmentExposure)
	)

	for _, loan := range loans {
		m.LoansByStatus[loan.Status]++

		switch loan.Status {
		case LoanStatusDraft:
		case LoanStatusDefaulted, LoanStatusLegalReady:
			defaulted++
			submitted++
		default:
			submitted++
		}

		if loan.Status == LoanStatusUnderReview {
			m.PendingApprovals++
		}

		if loan.Status == LoanStatusActive {
			m.ActiveLoans++
			m.TotalPortfolio = m.TotalPortfolio.Add(loan.Amount)
			ltvSum = ltvSum.Add(loan.LTV)

			name := "Unknown"
			if loan.Collateral != nil && loan.Collateral.Department != "" {
				name = loan.Collateral.Department
			}
			exposure, ok := department[name]
			if !ok {
				exposure = &DepartmentExposure{Department: name, Amount: decimal.Zero}
				department[name] = exposure
			}
			exposure.Loans++
			exposure.Amount = exposure.Amount.Add(loan.Amount)
		}

		for _, item := range loan.Schedule {
			if item.IsOverdue(asOf) {
				m.OverduePayments++
				m.OverdueAmount = m.OverdueAmount.Add(item.PrincipalDue).Add(item.InterestDue)
			}
		}

		for _, p := range loan.Payments {
			if p.Type == PaymentTypeInterest && !p.PaymentDate.Before(monthStart) && !p.PaymentDate.After(asOf) {
				m.MonthlyInterestIncome = m.MonthlyInterestIncome.Add(p.Amount)
			}
		}
	}

	if submitted > 0 {
		m.DefaultRate = decimal.NewFromInt(int64(defaulted)).Div(decimal.NewFromInt(int64(submitted))).Round(4)
	}
	if m.ActiveLoans > 0 {
		m.AverageLTV = ltvSum.Div(decimal.NewFromInt(int64(m.ActiveLoans))).Round(4)
	}

	for _, exposure := range department {
		m.LoansByDepartment = append(m.LoansByDepartment, *exposure)
	}
	sort.Slice(m.LoansByDepartment, func(i, j int) bool {
		return m.LoansByDepartment[i].Department < m.LoansByDepartment[j].Department
	})

	recent := make([]*Loan, len(loans))
	copy(recent, loans)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		}
		return recent[i].LoanNumber > recent[j].LoanNumber
	})
	if len(recent) > recentLoansLimit {
		recent = recent[:recentLoansLimit]
	}
	for _, loan := range recent {
		m.RecentLoans = append(m.RecentLoans, RecentLoan{
			ID:         loan.ID,
			LoanNumber: loan.LoanNumber,
			Status:     loan.Status,
			Amount:     loan.Amount,
			CreatedAt:  loan.CreatedAt,
		})
	}

	return m
}
