package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsconsole/lib/apperr"
)

func TestDerive_TenureChangeRecomputesEndDate(t *testing.T) {
	existing := map[string]interface{}{
		"start_date":       "2025-01-31",
		"tenure_months":    float64(12),
		"end_date":         "2026-01-31",
		"agreement_status": AgreementLive,
	}
	partial := map[string]interface{}{"tenure_months": 1}

	err := Derive(partial, existing, []Derivation{AgreementTerm}, date("2025-03-01"))

	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", partial["end_date"])
	assert.Equal(t, AgreementExpired, partial["agreement_status"])
	assert.Equal(t, "2026-01-31", existing["end_date"], "existing must not be mutated")
}

func TestDerive_UntouchedInputsLeavePartialAlone(t *testing.T) {
	partial := map[string]interface{}{"client_name": "Acme"}

	err := Derive(partial, nil, []Derivation{AgreementTerm}, date("2025-03-01"))

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"client_name": "Acme"}, partial)
	assert.False(t, NeedsExisting(partial, []Derivation{AgreementTerm, Warranty}))
}

func TestDerive_InvalidStartDate(t *testing.T) {
	partial := map[string]interface{}{"start_date": "2025-02-30", "tenure_months": 1}

	err := Derive(partial, nil, []Derivation{AgreementTerm}, date("2025-03-01"))

	assert.True(t, apperr.IsInvalidDate(err))
}

func TestDerive_WarrantyPeriodChange(t *testing.T) {
	existing := map[string]interface{}{"purchase_date": "2024-01-01", "warranty_period_months": float64(6)}
	partial := map[string]interface{}{"warranty_period_months": 24}

	require.True(t, NeedsExisting(partial, []Derivation{Warranty}))
	err := Derive(partial, existing, []Derivation{Warranty}, date("2025-01-02"))

	require.NoError(t, err)
	assert.Equal(t, WarrantyActive, partial["warranty_status"])
}

func TestRefresh_StatusFollowsToday(t *testing.T) {
	doc := map[string]interface{}{
		"start_date":       "2024-01-15",
		"tenure_months":    float64(6),
		"agreement_status": AgreementLive,
	}

	require.NoError(t, Refresh(doc, []Derivation{AgreementTerm}, date("2024-08-01")))

	assert.Equal(t, "2024-07-15", doc["end_date"])
	assert.Equal(t, AgreementExpired, doc["agreement_status"])
}

func TestRefresh_EndDateOnly(t *testing.T) {
	doc := map[string]interface{}{"end_date": "2024-07-15"}

	require.NoError(t, Refresh(doc, []Derivation{AgreementTerm}, date("2024-07-15")))

	assert.Equal(t, AgreementLive, doc["agreement_status"])
}

func TestIntField(t *testing.T) {
	doc := map[string]interface{}{"a": float64(3), "b": "12", "c": 2.5, "d": int32(7)}

	n, ok := IntField(doc, "a")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = IntField(doc, "b")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = IntField(doc, "c")
	assert.False(t, ok)

	n, ok = IntField(doc, "d")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = IntField(doc, "missing")
	assert.False(t, ok)
}
