package models

// Client represents a customer account and its service agreement
type Client struct {
	ID                   string   `json:"id"`
	Org                  string   `json:"org"`
	ClientName           string   `json:"client_name"`
	Address              string   `json:"address"`
	StartDate            string   `json:"start_date"`
	TenureMonths         int      `json:"tenure_months"`
	EndDate              string   `json:"end_date"`
	CurrencyPreference   string   `json:"currency_preference"`
	Service              string   `json:"service"`
	AmountINR            float64  `json:"amount_inr"`
	AmountPPC            *float64 `json:"amount_ppc,omitempty"`
	AmountSEO            *float64 `json:"amount_seo,omitempty"`
	AuthorisedSignatory  string   `json:"authorised_signatory"`
	SignatoryDesignation string   `json:"signatory_designation"`
	GST                  string   `json:"gst"`
	POCName              string   `json:"poc_name"`
	POCEmail             string   `json:"poc_email"`
	POCDesignation       string   `json:"poc_designation"`
	POCMobile            string   `json:"poc_mobile"`
	ApproverUserID       string   `json:"approver_user_id"`
	SignStatus           string   `json:"sign_status"`
	ClientStatus         string   `json:"client_status"`
	AgreementStatus      string   `json:"agreement_status"`
	CreatedAt            string   `json:"created_at"`
}

// Validate checks required fields and enum membership.
func (c *Client) Validate() error {
	return firstError(
		required("client_name", c.ClientName),
		required("address", c.Address),
		validDate("start_date", c.StartDate),
		nonNegativeMonths("tenure_months", c.TenureMonths),
		oneOf("currency_preference", c.CurrencyPreference, currencies),
		oneOf("service", c.Service, Services),
		nonNegative("amount_inr", c.AmountINR),
		required("authorised_signatory", c.AuthorisedSignatory),
		required("poc_name", c.POCName),
		validEmail("poc_email", c.POCEmail),
		oneOf("sign_status", c.SignStatus, signStatuses),
		oneOf("client_status", c.ClientStatus, clientStatuses),
		oneOf("agreement_status", c.AgreementStatus, agreementStates),
	)
}

// CreateClientRequest represents the request payload for creating a client
type CreateClientRequest struct {
	ClientName           string   `json:"client_name"`
	Address              string   `json:"address"`
	StartDate            string   `json:"start_date"`
	TenureMonths         int      `json:"tenure_months"`
	CurrencyPreference   string   `json:"currency_preference,omitempty"`
	Service              string   `json:"service"`
	AmountINR            float64  `json:"amount_inr"`
	AmountPPC            *float64 `json:"amount_ppc,omitempty"`
	AmountSEO            *float64 `json:"amount_seo,omitempty"`
	AuthorisedSignatory  string   `json:"authorised_signatory"`
	SignatoryDesignation string   `json:"signatory_designation"`
	GST                  string   `json:"gst"`
	POCName              string   `json:"poc_name"`
	POCEmail             string   `json:"poc_email"`
	POCDesignation       string   `json:"poc_designation"`
	POCMobile            string   `json:"poc_mobile"`
	ApproverUserID       string   `json:"approver_user_id"`
	SignStatus           string   `json:"sign_status,omitempty"`
	ClientStatus         string   `json:"client_status,omitempty"`
}

// UpdateClientRequest lists every client field a caller may change. Fields
// left nil are not touched.
type UpdateClientRequest struct {
	ClientName           *string  `json:"client_name,omitempty"`
	Address              *string  `json:"address,omitempty"`
	StartDate            *string  `json:"start_date,omitempty"`
	TenureMonths         *int     `json:"tenure_months,omitempty"`
	CurrencyPreference   *string  `json:"currency_preference,omitempty"`
	Service              *string  `json:"service,omitempty"`
	AmountINR            *float64 `json:"amount_inr,omitempty"`
	AmountPPC            *float64 `json:"amount_ppc,omitempty"`
	AmountSEO            *float64 `json:"amount_seo,omitempty"`
	AuthorisedSignatory  *string  `json:"authorised_signatory,omitempty"`
	SignatoryDesignation *string  `json:"signatory_designation,omitempty"`
	GST                  *string  `json:"gst,omitempty"`
	POCName              *string  `json:"poc_name,omitempty"`
	POCEmail             *string  `json:"poc_email,omitempty"`
	POCDesignation       *string  `json:"poc_designation,omitempty"`
	POCMobile            *string  `json:"poc_mobile,omitempty"`
	ApproverUserID       *string  `json:"approver_user_id,omitempty"`
	SignStatus           *string  `json:"sign_status,omitempty"`
	ClientStatus         *string  `json:"client_status,omitempty"`
}

// ClientColumns is the column order used for client import and export files.
var ClientColumns = []string{
	"id", "client_name", "address", "start_date", "tenure_months", "end_date",
	"currency_preference", "service", "amount_inr", "amount_ppc", "amount_seo",
	"authorised_signatory", "signatory_designation", "gst", "poc_name", "poc_email",
	"poc_designation", "poc_mobile", "approver_user_id", "sign_status", "client_status",
	"agreement_status", "created_at",
}
