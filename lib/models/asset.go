package models

// Asset represents a piece of company equipment and its warranty
type Asset struct {
	ID                   string  `json:"id"`
	AssetType            string  `json:"asset_type"`
	Model                string  `json:"model"`
	SerialNumber         string  `json:"serial_number"`
	PurchaseDate         string  `json:"purchase_date"`
	Vendor               string  `json:"vendor"`
	ValueExGST           float64 `json:"value_ex_gst"`
	WarrantyPeriodMonths int     `json:"warranty_period_months"`
	AllotedTo            string  `json:"alloted_to"`
	Email                string  `json:"email"`
	Department           string  `json:"department"`
	WarrantyStatus       string  `json:"warranty_status"`
	CreatedAt            string  `json:"created_at"`
}

// Validate checks required fields and enum membership.
func (a *Asset) Validate() error {
	return firstError(
		required("asset_type", a.AssetType),
		required("model", a.Model),
		required("serial_number", a.SerialNumber),
		validDate("purchase_date", a.PurchaseDate),
		nonNegative("value_ex_gst", a.ValueExGST),
		nonNegativeMonths("warranty_period_months", a.WarrantyPeriodMonths),
		required("alloted_to", a.AllotedTo),
		validEmail("email", a.Email),
		oneOf("department", a.Department, Departments),
	)
}

// CreateAssetRequest represents the request payload for registering an asset
type CreateAssetRequest struct {
	AssetType            string  `json:"asset_type"`
	Model                string  `json:"model"`
	SerialNumber         string  `json:"serial_number"`
	PurchaseDate         string  `json:"purchase_date"`
	Vendor               string  `json:"vendor"`
	ValueExGST           float64 `json:"value_ex_gst"`
	WarrantyPeriodMonths int     `json:"warranty_period_months"`
	AllotedTo            string  `json:"alloted_to"`
	Email                string  `json:"email"`
	Department           string  `json:"department"`
}

// UpdateAssetRequest lists every asset field a caller may change
type UpdateAssetRequest struct {
	AssetType            *string  `json:"asset_type,omitempty"`
	Model                *string  `json:"model,omitempty"`
	SerialNumber         *string  `json:"serial_number,omitempty"`
	PurchaseDate         *string  `json:"purchase_date,omitempty"`
	Vendor               *string  `json:"vendor,omitempty"`
	ValueExGST           *float64 `json:"value_ex_gst,omitempty"`
	WarrantyPeriodMonths *int     `json:"warranty_period_months,omitempty"`
	AllotedTo            *string  `json:"alloted_to,omitempty"`
	Email                *string  `json:"email,omitempty"`
	Department           *string  `json:"department,omitempty"`
}

// AssetColumns is the column order used for asset import and export files.
var AssetColumns = []string{
	"id", "asset_type", "model", "serial_number", "purchase_date", "vendor",
	"value_ex_gst", "warranty_period_months", "alloted_to", "email", "department",
	"warranty_status", "created_at",
}
