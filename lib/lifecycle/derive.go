package lifecycle

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"opsconsole/lib/apperr"
)

// Derivation declares which stored fields are computed from which inputs.
// Whenever a write touches any input, every output is recomputed from the
// merged record and written in the same partial update.
type Derivation struct {
	Name    string
	Inputs  []string
	Outputs []string
	Apply   func(doc map[string]interface{}, today time.Time) error
}

// AgreementTerm keeps end_date and agreement_status consistent with the
// start date and tenure of clients and contractors.
var AgreementTerm = Derivation{
	Name:    "agreement_term",
	Inputs:  []string{"start_date", "tenure_months"},
	Outputs: []string{"end_date", "agreement_status"},
	Apply:   applyAgreementTerm,
}

// Warranty keeps warranty_status consistent with purchase date and period.
var Warranty = Derivation{
	Name:    "warranty",
	Inputs:  []string{"purchase_date", "warranty_period_months"},
	Outputs: []string{"warranty_status"},
	Apply:   applyWarranty,
}

// Touches reports whether partial sets any of d's inputs.
func (d Derivation) Touches(partial map[string]interface{}) bool {
	for _, in := range d.Inputs {
		if _, ok := partial[in]; ok {
			return true
		}
	}
	return false
}

// NeedsExisting reports whether partial triggers any derivation in table, in
// which case the stored record must be loaded before the write.
func NeedsExisting(partial map[string]interface{}, table []Derivation) bool {
	for _, d := range table {
		if d.Touches(partial) {
			return true
		}
	}
	return false
}

// Derive recomputes every output of the derivations whose inputs appear in
// partial, using existing overlaid with partial, and stores the results in partial.
func Derive(partial, existing map[string]interface{}, table []Derivation, today time.Time) error {
	for _, d := range table {
		if !d.Touches(partial) {
			continue
		}
		merged := make(map[string]interface{}, len(existing)+len(partial))
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range partial {
			merged[k] = v
		}
		if err := d.Apply(merged, today); err != nil {
			return err
		}
		for _, out := range d.Outputs {
			if v, ok := merged[out]; ok {
				partial[out] = v
			}
		}
	}
	return nil
}

// Refresh recomputes every derivation on a complete record in place. It is
// used on the read path so status fields reflect today's date.
func Refresh(doc map[string]interface{}, table []Derivation, today time.Time) error {
	for _, d := range table {
		if err := d.Apply(doc, today); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
	}
	return nil
}

func applyAgreementTerm(doc map[string]interface{}, today time.Time) error {
	start := StringField(doc, "start_date")
	if start != "" {
		tenure, ok := IntField(doc, "tenure_months")
		if !ok {
			return &apperr.ValidationError{Field: "tenure_months", Message: "must be a whole number of months"}
		}
		end, err := ComputeEndDate(start, tenure)
		if err != nil {
			return err
		}
		doc["end_date"] = end
	}

	end := StringField(doc, "end_date")
	if end == "" {
		return nil
	}
	status, err := ComputeAgreementStatus(end, today)
	if err != nil {
		return err
	}
	doc["agreement_status"] = status
	return nil
}

func applyWarranty(doc map[string]interface{}, today time.Time) error {
	purchase := StringField(doc, "purchase_date")
	if purchase == "" {
		return nil
	}
	months, ok := IntField(doc, "warranty_period_months")
	if !ok {
		return &apperr.ValidationError{Field: "warranty_period_months", Message: "must be a whole number of months"}
	}
	status, err := ComputeWarrantyStatus(purchase, months, today)
	if err != nil {
		return err
	}
	doc["warranty_status"] = status
	return nil
}

// StringField returns doc[key] when it is a string.
func StringField(doc map[string]interface{}, key string) string {
	s, _ := doc[key].(string)
	return s
}

// IntField reads doc[key] as an integer, accepting the numeric shapes the
// JSON and BSON decoders produce.
func IntField(doc map[string]interface{}, key string) (int, bool) {
	switch v := doc[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
