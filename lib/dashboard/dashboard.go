// Package dashboard builds the read-only console summary from active clients,
// employees and contractors.
package dashboard

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"opsconsole/lib/data"
	"opsconsole/lib/lifecycle"
	"opsconsole/lib/models"
	"opsconsole/lib/service"
)

const (
	// ExpiringWindowDays is how far ahead an agreement counts as expiring.
	ExpiringWindowDays = 30
	// AnniversaryWindowDays is how far ahead a birthday counts as upcoming.
	AnniversaryWindowDays = 15
)

// Source yields the stored documents of one record kind.
type Source interface {
	Kind() service.Kind
	Documents(ctx context.Context, filter data.Filter) ([]models.Document, error)
}

// Snapshot holds the active documents the summary is computed from.
type Snapshot struct {
	Clients     []models.Document
	Employees   []models.Document
	Contractors []models.Document
}

// Aggregator reads the three sources concurrently and summarises them.
type Aggregator struct {
	Clients     Source
	Employees   Source
	Contractors Source
	Logger      *logrus.Logger
	Now         func() time.Time
}

// Summary fetches the active records of every source and summarises them
// for the current day. It performs no writes.
func (a *Aggregator) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetchActive(gctx, a.Clients, &snap.Clients) })
	g.Go(func() error { return fetchActive(gctx, a.Employees, &snap.Employees) })
	g.Go(func() error { return fetchActive(gctx, a.Contractors, &snap.Contractors) })
	if err := g.Wait(); err != nil {
		a.logger().WithFields(logrus.Fields{
			"operation": "Summary",
			"error":     err.Error(),
		}).Error("Failed to load dashboard records")
		return nil, err
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	summary := Summarize(now(), snap, a.logger())
	return &summary, nil
}

func (a *Aggregator) logger() *logrus.Logger {
	if a.Logger == nil {
		a.Logger = logrus.New()
	}
	return a.Logger
}

func fetchActive(ctx context.Context, src Source, out *[]models.Document) error {
	kind := src.Kind()
	filter := data.Filter{}
	if kind.StatusField != "" {
		filter[kind.StatusField] = kind.ActiveStatus
	}
	docs, err := src.Documents(ctx, filter)
	if err != nil {
		return err
	}
	*out = docs
	return nil
}

// Summarize computes the dashboard for today from already-active documents.
// Records whose dates cannot be parsed are logged, counted in
// SkippedRecords and left out of the date-based lists; they still count in
// the department roll-ups.
func Summarize(today time.Time, snap Snapshot, logger *logrus.Logger) models.DashboardSummary {
	today = lifecycle.DateOf(today)
	s := models.DashboardSummary{
		GeneratedFor:           today.Format(lifecycle.DateLayout),
		TotalActiveClients:     len(snap.Clients),
		TotalActiveEmployees:   len(snap.Employees),
		TotalActiveContractors: len(snap.Contractors),
		ExpiringAgreements:     []models.AgreementSummary{},
		ExpiredAgreements:      []models.AgreementSummary{},
		UpcomingAnniversaries:  []models.Anniversary{},
		TotalRevenue:           decimal.Zero,
		TotalCost:              decimal.Zero,
	}

	rollups := make(map[string]*models.DepartmentRollup, len(models.Departments))
	for _, dept := range models.Departments {
		rollups[dept] = &models.DepartmentRollup{
			Department:     dept,
			Revenue:        decimal.Zero,
			EmployeeCost:   decimal.Zero,
			ContractorCost: decimal.Zero,
		}
	}

	skip := func(itemType models.ItemType, doc models.Document, field string, err error) {
		s.SkippedRecords++
		logger.WithFields(logrus.Fields{
			"operation": "Summarize",
			"item_type": itemType,
			"id":        doc.ID(),
			"field":     field,
			"error":     err.Error(),
		}).Warn("Skipping record with malformed date")
	}

	for _, doc := range snap.Clients {
		offering := lifecycle.StringField(doc, "service")
		amount := money(doc["amount_inr"])
		if r, ok := rollups[offering]; ok {
			r.ClientCount++
			r.Revenue = r.Revenue.Add(amount)
			s.TotalRevenue = s.TotalRevenue.Add(amount)
		}

		raw := lifecycle.StringField(doc, "end_date")
		if raw == "" {
			continue
		}
		end, err := lifecycle.ParseDate(raw)
		if err != nil {
			skip(models.ItemClient, doc, "end_date", err)
			continue
		}
		agreement := models.AgreementSummary{
			ID:       doc.ID(),
			Name:     lifecycle.StringField(doc, "client_name"),
			Service:  offering,
			EndDate:  raw,
			DaysLeft: lifecycle.DaysBetween(today, end),
		}
		switch {
		case agreement.DaysLeft < 0:
			s.ExpiredAgreements = append(s.ExpiredAgreements, agreement)
		case agreement.DaysLeft <= ExpiringWindowDays:
			s.ExpiringAgreements = append(s.ExpiringAgreements, agreement)
		}
	}

	people := []struct {
		itemType models.ItemType
		docs     []models.Document
		costKey  string
		name     func(models.Document) string
	}{
		{models.ItemEmployee, snap.Employees, "monthly_gross_inr", employeeName},
		{models.ItemContractor, snap.Contractors, "monthly_retainer_inr", func(d models.Document) string {
			return lifecycle.StringField(d, "name")
		}},
	}
	for _, group := range people {
		for _, doc := range group.docs {
			dept := lifecycle.StringField(doc, "department")
			cost := money(doc[group.costKey])
			if r, ok := rollups[dept]; ok {
				if group.itemType == models.ItemEmployee {
					r.EmployeeCount++
					r.EmployeeCost = r.EmployeeCost.Add(cost)
				} else {
					r.ContractorCount++
					r.ContractorCost = r.ContractorCost.Add(cost)
				}
				s.TotalCost = s.TotalCost.Add(cost)
			}

			raw := lifecycle.StringField(doc, "dob")
			if raw == "" {
				continue
			}
			dob, err := lifecycle.ParseDate(raw)
			if err != nil {
				skip(group.itemType, doc, "dob", err)
				continue
			}
			next := lifecycle.NextAnniversary(dob, today)
			days := lifecycle.DaysBetween(today, next)
			if days > AnniversaryWindowDays {
				continue
			}
			s.UpcomingAnniversaries = append(s.UpcomingAnniversaries, models.Anniversary{
				ID:         doc.ID(),
				ItemType:   group.itemType,
				Name:       group.name(doc),
				Department: dept,
				DOB:        raw,
				Date:       next.Format(lifecycle.DateLayout),
				DaysLeft:   days,
			})
		}
	}

	sort.SliceStable(s.UpcomingAnniversaries, func(i, j int) bool {
		return s.UpcomingAnniversaries[i].DaysLeft < s.UpcomingAnniversaries[j].DaysLeft
	})
	sort.SliceStable(s.ExpiringAgreements, func(i, j int) bool {
		return s.ExpiringAgreements[i].DaysLeft < s.ExpiringAgreements[j].DaysLeft
	})

	for _, dept := range models.Departments {
		s.Departments = append(s.Departments, *rollups[dept])
	}
	return s
}

func employeeName(doc models.Document) string {
	return strings.TrimSpace(lifecycle.StringField(doc, "first_name") + " " + lifecycle.StringField(doc, "last_name"))
}

// money reads a stored amount; anything non-numeric counts as zero.
func money(v interface{}) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.ReplaceAll(n, ",", "")); err == nil {
			return d
		}
	}
	return decimal.Zero
}
