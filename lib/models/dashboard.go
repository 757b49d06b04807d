package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AgreementSummary is a client agreement surfaced on the dashboard. DaysLeft
// is negative once the agreement has expired.
type AgreementSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Service  string `json:"service"`
	EndDate  string `json:"end_date"`
	DaysLeft int    `json:"days_left"`
}

// Anniversary is an upcoming birthday of an employee or contractor
type Anniversary struct {
	ID         string   `json:"id"`
	ItemType   ItemType `json:"item_type"`
	Name       string   `json:"name"`
	Department string   `json:"department"`
	DOB        string   `json:"dob"`
	Date       string   `json:"date"`
	DaysLeft   int      `json:"days_left"`
}

// DepartmentRollup aggregates the active records of one department
type DepartmentRollup struct {
	Department      string          `json:"department"`
	ClientCount     int             `json:"client_count"`
	Revenue         decimal.Decimal `json:"revenue_inr"`
	EmployeeCount   int             `json:"employee_count"`
	EmployeeCost    decimal.Decimal `json:"employee_cost_inr"`
	ContractorCount int             `json:"contractor_count"`
	ContractorCost  decimal.Decimal `json:"contractor_cost_inr"`
}

// DashboardSummary is the aggregate returned by the dashboard endpoint
type DashboardSummary struct {
	GeneratedFor           string             `json:"generated_for"`
	TotalActiveClients     int                `json:"total_active_clients"`
	TotalActiveEmployees   int                `json:"total_active_employees"`
	TotalActiveContractors int                `json:"total_active_contractors"`
	ExpiringAgreements     []AgreementSummary `json:"expiring_agreements"`
	ExpiredAgreements      []AgreementSummary `json:"expired_agreements"`
	UpcomingAnniversaries  []Anniversary      `json:"upcoming_anniversaries"`
	Departments            []DepartmentRollup `json:"departments"`
	TotalRevenue           decimal.Decimal    `json:"total_revenue_inr"`
	TotalCost              decimal.Decimal    `json:"total_cost_inr"`
	SkippedRecords         int                `json:"skipped_records"`
}

// ImportRowError describes why one row of a bulk import was rejected
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the outcome of a bulk import
type ImportResult struct {
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors"`
}

// Messages renders each row error as "Row N: message".
func (r *ImportResult) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, fmt.Sprintf("Row %d: %s", e.Row, e.Message))
	}
	return out
}

// FileResponse carries a presigned link to a generated or staged file
type FileResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}
