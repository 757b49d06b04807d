package service

import (
	"strings"

	"github.com/google/uuid"

	"opsconsole/lib/data"
	"opsconsole/lib/lifecycle"
	"opsconsole/lib/models"
)

// Kind describes how one record type is stored and which of its fields are
// derived from others.
type Kind struct {
	Name            string
	Collection      string
	IDPrefix        string
	HasOrg          bool
	HasApprover     bool
	Defaults        models.Document
	StatusField     string
	ActiveStatus    string
	DepartmentField string
	NameField       string
	Derivations     []lifecycle.Derivation
	Columns         []string
}

var (
	ClientKind = Kind{
		Name:        "client",
		Collection:  data.CollectionClients,
		IDPrefix:    "client",
		HasOrg:      true,
		HasApprover: true,
		Defaults: models.Document{
			"currency_preference": models.CurrencyINR,
			"sign_status":         models.SignStatusNotSigned,
			"client_status":       models.ClientStatusActive,
			"agreement_status":    lifecycle.AgreementLive,
		},
		StatusField:     "client_status",
		ActiveStatus:    models.ClientStatusActive,
		DepartmentField: "service",
		NameField:       "client_name",
		Derivations:     []lifecycle.Derivation{lifecycle.AgreementTerm},
		Columns:         models.ClientColumns,
	}

	ContractorKind = Kind{
		Name:        "contractor",
		Collection:  data.CollectionContractors,
		IDPrefix:    "contractor",
		HasApprover: true,
		Defaults: models.Document{
			"gender":           models.GenderMale,
			"projects":         []interface{}{},
			"sign_status":      models.SignStatusNotSigned,
			"status":           models.StatusActive,
			"agreement_status": lifecycle.AgreementLive,
		},
		StatusField:     "status",
		ActiveStatus:    models.StatusActive,
		DepartmentField: "department",
		NameField:       "name",
		Derivations:     []lifecycle.Derivation{lifecycle.AgreementTerm},
		Columns:         models.ContractorColumns,
	}

	EmployeeKind = Kind{
		Name:        "employee",
		Collection:  data.CollectionEmployees,
		IDPrefix:    "emp",
		HasApprover: true,
		Defaults: models.Document{
			"gender":   models.GenderMale,
			"projects": []interface{}{},
			"status":   models.StatusActive,
		},
		StatusField:     "status",
		ActiveStatus:    models.StatusActive,
		DepartmentField: "department",
		NameField:       "first_name",
		Columns:         models.EmployeeColumns,
	}

	AssetKind = Kind{
		Name:       "asset",
		Collection: data.CollectionAssets,
		IDPrefix:   "asset",
		Defaults: models.Document{
			"warranty_status": lifecycle.WarrantyActive,
		},
		DepartmentField: "department",
		NameField:       "asset_type",
		Derivations:     []lifecycle.Derivation{lifecycle.Warranty},
		Columns:         models.AssetColumns,
	}
)

// NewID returns prefix_ followed by 32 random hex characters.
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// outputs lists every field the kind derives; callers may never set them.
func (k Kind) outputs() map[string]bool {
	out := map[string]bool{}
	for _, d := range k.Derivations {
		for _, f := range d.Outputs {
			out[f] = true
		}
	}
	return out
}

// InputColumns lists the columns a caller may fill in: every column except
// the generated id, org and created_at and the derived fields.
func (k Kind) InputColumns() []string {
	derived := k.outputs()
	cols := make([]string, 0, len(k.Columns))
	for _, c := range k.Columns {
		if c == "id" || c == "org" || c == "created_at" || derived[c] {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}
