package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsconsole/lib/data"
	"opsconsole/lib/models"
	"opsconsole/lib/service"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSummarize_ExpiringVersusExpired(t *testing.T) {
	// Arrange
	today := day("2025-03-10")
	snap := Snapshot{Clients: []models.Document{
		{"id": "client_soon", "client_name": "Acme", "service": "SEO", "end_date": "2025-03-20", "amount_inr": 1000.0},
		{"id": "client_gone", "client_name": "Bolt", "service": "PPC", "end_date": "2025-03-09", "amount_inr": 500.0},
		{"id": "client_edge", "client_name": "Crane", "service": "SEO", "end_date": "2025-04-09", "amount_inr": 250.5},
		{"id": "client_far", "client_name": "Dune", "service": "Content", "end_date": "2025-04-10"},
	}}

	// Act
	s := Summarize(today.Add(15*time.Hour), snap, quietLogger())

	// Assert
	assert.Equal(t, "2025-03-10", s.GeneratedFor)
	require.Len(t, s.ExpiringAgreements, 2)
	assert.Equal(t, "client_soon", s.ExpiringAgreements[0].ID)
	assert.Equal(t, 10, s.ExpiringAgreements[0].DaysLeft)
	assert.Equal(t, "client_edge", s.ExpiringAgreements[1].ID)
	assert.Equal(t, 30, s.ExpiringAgreements[1].DaysLeft)

	require.Len(t, s.ExpiredAgreements, 1)
	assert.Equal(t, "client_gone", s.ExpiredAgreements[0].ID)
	assert.Equal(t, "PPC", s.ExpiredAgreements[0].Service)
	assert.Equal(t, -1, s.ExpiredAgreements[0].DaysLeft)
	assert.Equal(t, 4, s.TotalActiveClients)
}

func TestSummarize_Anniversaries(t *testing.T) {
	today := day("2025-12-28")
	snap := Snapshot{
		Employees: []models.Document{
			{"id": "emp_1", "first_name": "Asha", "last_name": "Rao", "dob": "1990-01-05", "department": "SEO"},
			{"id": "emp_2", "first_name": "Dev", "last_name": "Iyer", "dob": "1991-12-28", "department": "PPC"},
			{"id": "emp_3", "first_name": "Far", "last_name": "Off", "dob": "1991-03-01", "department": "PPC"},
		},
		Contractors: []models.Document{
			{"id": "contractor_1", "name": "Meera", "dob": "1994-12-31", "department": "Content"},
		},
	}

	s := Summarize(today, snap, quietLogger())

	require.Len(t, s.UpcomingAnniversaries, 3)
	assert.Equal(t, "emp_2", s.UpcomingAnniversaries[0].ID)
	assert.Equal(t, 0, s.UpcomingAnniversaries[0].DaysLeft)
	assert.Equal(t, "Dev Iyer", s.UpcomingAnniversaries[0].Name)
	assert.Equal(t, "contractor_1", s.UpcomingAnniversaries[1].ID)
	assert.Equal(t, models.ItemContractor, s.UpcomingAnniversaries[1].ItemType)
	assert.Equal(t, "emp_1", s.UpcomingAnniversaries[2].ID)
	assert.Equal(t, "2026-01-05", s.UpcomingAnniversaries[2].Date)
	assert.Equal(t, 8, s.UpcomingAnniversaries[2].DaysLeft)
}

func TestSummarize_SkipsMalformedDates(t *testing.T) {
	snap := Snapshot{
		Clients: []models.Document{
			{"id": "client_bad", "client_name": "Acme", "service": "SEO", "end_date": "soon", "amount_inr": 100.0},
		},
		Employees: []models.Document{
			{"id": "emp_bad", "first_name": "Asha", "dob": "31/12/1990", "department": "SEO", "monthly_gross_inr": 10.0},
			{"id": "emp_nodob", "first_name": "Dev", "department": "SEO"},
		},
	}

	s := Summarize(day("2025-03-10"), snap, quietLogger())

	assert.Equal(t, 2, s.SkippedRecords)
	assert.Empty(t, s.ExpiringAgreements)
	assert.Empty(t, s.ExpiredAgreements)
	assert.Empty(t, s.UpcomingAnniversaries)
	assert.Equal(t, 1, s.Departments[1].ClientCount)
	assert.Equal(t, 2, s.Departments[1].EmployeeCount)
}

func TestSummarize_DepartmentRollups(t *testing.T) {
	snap := Snapshot{
		Clients: []models.Document{
			{"id": "c1", "service": "SEO", "amount_inr": 0.1},
			{"id": "c2", "service": "SEO", "amount_inr": 0.2},
			{"id": "c3", "service": "Radio", "amount_inr": 99.0},
		},
		Employees: []models.Document{
			{"id": "e1", "department": "Content", "monthly_gross_inr": 50000.0},
		},
		Contractors: []models.Document{
			{"id": "k1", "department": "Content", "monthly_retainer_inr": "12,500"},
			{"id": "k2", "department": "Others"},
		},
	}

	s := Summarize(day("2025-03-10"), snap, quietLogger())

	require.Len(t, s.Departments, len(models.Departments))
	byName := map[string]models.DepartmentRollup{}
	for _, r := range s.Departments {
		byName[r.Department] = r
	}
	assert.Equal(t, "PPC", s.Departments[0].Department)
	assert.Equal(t, 2, byName["SEO"].ClientCount)
	assert.True(t, decimal.RequireFromString("0.3").Equal(byName["SEO"].Revenue))
	assert.Equal(t, 1, byName["Content"].EmployeeCount)
	assert.True(t, decimal.NewFromInt(50000).Equal(byName["Content"].EmployeeCost))
	assert.Equal(t, 1, byName["Content"].ContractorCount)
	assert.True(t, decimal.NewFromInt(12500).Equal(byName["Content"].ContractorCost))
	assert.Equal(t, 1, byName["Others"].ContractorCount)
	assert.True(t, byName["Others"].ContractorCost.IsZero())
	assert.Equal(t, 0, byName["Backlink"].ClientCount)
	assert.True(t, byName["Business Development"].Revenue.IsZero())
	assert.True(t, decimal.RequireFromString("0.3").Equal(s.TotalRevenue))
	assert.True(t, decimal.NewFromInt(62500).Equal(s.TotalCost))
}

type fakeSource struct {
	kind service.Kind
	docs []models.Document
	err  error
	seen data.Filter
}

func (f *fakeSource) Kind() service.Kind { return f.kind }

func (f *fakeSource) Documents(ctx context.Context, filter data.Filter) ([]models.Document, error) {
	f.seen = filter
	return f.docs, f.err
}

func TestAggregatorSummary(t *testing.T) {
	// Arrange
	clients := &fakeSource{kind: service.ClientKind, docs: []models.Document{
		{"id": "client_1", "client_name": "Acme", "service": "SEO", "end_date": "2025-03-20", "amount_inr": 10.0},
	}}
	employees := &fakeSource{kind: service.EmployeeKind}
	contractors := &fakeSource{kind: service.ContractorKind}
	agg := &Aggregator{
		Clients:     clients,
		Employees:   employees,
		Contractors: contractors,
		Logger:      quietLogger(),
		Now:         func() time.Time { return day("2025-03-10") },
	}

	// Act
	s, err := agg.Summary(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, data.Filter{"client_status": "Active"}, clients.seen)
	assert.Equal(t, data.Filter{"status": "Active"}, employees.seen)
	assert.Equal(t, 1, s.TotalActiveClients)
	assert.Len(t, s.ExpiringAgreements, 1)
}

func TestAggregatorSummary_SourceFailure(t *testing.T) {
	failure := errors.New("store unavailable")
	agg := &Aggregator{
		Clients:     &fakeSource{kind: service.ClientKind},
		Employees:   &fakeSource{kind: service.EmployeeKind, err: failure},
		Contractors: &fakeSource{kind: service.ContractorKind},
		Logger:      quietLogger(),
	}

	_, err := agg.Summary(context.Background())

	assert.ErrorIs(t, err, failure)
}
