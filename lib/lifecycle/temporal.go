// Package lifecycle computes the time-derived fields of console records:
// agreement end dates, agreement status and warranty status.
package lifecycle

import (
	"time"

	"opsconsole/lib/apperr"
)

// DateLayout is the storage format for every calendar date.
const DateLayout = "2006-01-02"

const (
	AgreementLive    = "Live"
	AgreementExpired = "Expired"

	WarrantyActive  = "Active"
	WarrantyExpired = "Expired"
)

// warrantyMonthDays is the fixed month length used for warranty arithmetic.
const warrantyMonthDays = 30

var dateFormats = []string{
	DateLayout,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses s and keeps only its calendar date, normalised to UTC midnight.
func ParseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, &apperr.InvalidDateError{Value: s}
}

// DateOf drops the clock part of t, keeping t's own calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds calendar months to t. When the target month is shorter than
// t's day, the day is clamped to the target month's last day.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	year := y + floorDiv(total, 12)
	month := time.Month(floorMod(total, 12) + 1)
	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// ComputeEndDate returns start_date + tenure_months as a YYYY-MM-DD string.
func ComputeEndDate(startDate string, tenureMonths int) (string, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return "", &apperr.InvalidDateError{Field: "start_date", Value: startDate}
	}
	return AddMonths(start, tenureMonths).Format(DateLayout), nil
}

// AgreementStatusAt is Live iff today is on or before end.
func AgreementStatusAt(end, today time.Time) string {
	if !DateOf(today).After(DateOf(end)) {
		return AgreementLive
	}
	return AgreementExpired
}

// ComputeAgreementStatus parses endDate and compares it to today.
func ComputeAgreementStatus(endDate string, today time.Time) (string, error) {
	end, err := ParseDate(endDate)
	if err != nil {
		return "", &apperr.InvalidDateError{Field: "end_date", Value: endDate}
	}
	return AgreementStatusAt(end, today), nil
}

// WarrantyExpiry is purchase + 30 days per warranty month.
func WarrantyExpiry(purchase time.Time, months int) time.Time {
	return DateOf(purchase).AddDate(0, 0, warrantyMonthDays*months)
}

// ComputeWarrantyStatus is Active iff today is on or before the warranty expiry.
func ComputeWarrantyStatus(purchaseDate string, months int, today time.Time) (string, error) {
	purchase, err := ParseDate(purchaseDate)
	if err != nil {
		return "", &apperr.InvalidDateError{Field: "purchase_date", Value: purchaseDate}
	}
	if DateOf(today).After(WarrantyExpiry(purchase, months)) {
		return WarrantyExpired, nil
	}
	return WarrantyActive, nil
}

// NextAnniversary returns the first date on or after today that falls on
// dob's month and day. Feb 29 falls on Feb 28 in common years.
func NextAnniversary(dob, today time.Time) time.Time {
	today = DateOf(today)
	occurrence := sameDayIn(dob, today.Year())
	if occurrence.Before(today) {
		occurrence = sameDayIn(dob, today.Year()+1)
	}
	return occurrence
}

// DaysBetween counts calendar days from a to b; negative when b is earlier.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

func sameDayIn(t time.Time, year int) time.Time {
	_, m, d := t.Date()
	if last := daysIn(year, m); d > last {
		d = last
	}
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
