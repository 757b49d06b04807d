package models

import "opsconsole/lib/apperr"

// Contractor represents an individual engaged on a fixed-term agreement
type Contractor struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	DOJ                string   `json:"doj"`
	StartDate          string   `json:"start_date"`
	TenureMonths       int      `json:"tenure_months"`
	EndDate            string   `json:"end_date"`
	DOB                string   `json:"dob"`
	Gender             string   `json:"gender"`
	PAN                string   `json:"pan"`
	Aadhar             string   `json:"aadhar"`
	Mobile             string   `json:"mobile"`
	PersonalEmail      string   `json:"personal_email"`
	BankName           string   `json:"bank_name"`
	AccountHolder      string   `json:"account_holder"`
	AccountNo          string   `json:"account_no"`
	IFSC               string   `json:"ifsc"`
	Address1           string   `json:"address_1"`
	Pincode            string   `json:"pincode"`
	City               string   `json:"city"`
	Address2           *string  `json:"address_2,omitempty"`
	Department         string   `json:"department"`
	Projects           []string `json:"projects"`
	MonthlyRetainerINR float64  `json:"monthly_retainer_inr"`
	Designation        string   `json:"designation"`
	ApproverUserID     string   `json:"approver_user_id"`
	SignStatus         string   `json:"sign_status"`
	Status             string   `json:"status"`
	AgreementStatus    string   `json:"agreement_status"`
	CreatedAt          string   `json:"created_at"`
}

// Validate checks required fields and enum membership.
func (c *Contractor) Validate() error {
	return firstError(
		required("name", c.Name),
		validDate("doj", c.DOJ),
		validDate("start_date", c.StartDate),
		nonNegativeMonths("tenure_months", c.TenureMonths),
		validDate("dob", c.DOB),
		oneOf("gender", c.Gender, genders),
		required("pan", c.PAN),
		required("mobile", c.Mobile),
		validEmail("personal_email", c.PersonalEmail),
		oneOf("department", c.Department, Departments),
		nonNegative("monthly_retainer_inr", c.MonthlyRetainerINR),
		oneOf("sign_status", c.SignStatus, signStatuses),
		oneOf("status", c.Status, workerStatuses),
		oneOf("agreement_status", c.AgreementStatus, agreementStates),
	)
}

// CreateContractorRequest represents the request payload for creating a contractor
type CreateContractorRequest struct {
	Name               string   `json:"name"`
	DOJ                string   `json:"doj"`
	StartDate          string   `json:"start_date"`
	TenureMonths       int      `json:"tenure_months"`
	DOB                string   `json:"dob"`
	Gender             string   `json:"gender,omitempty"`
	PAN                string   `json:"pan"`
	Aadhar             string   `json:"aadhar"`
	Mobile             string   `json:"mobile"`
	PersonalEmail      string   `json:"personal_email"`
	BankName           string   `json:"bank_name"`
	AccountHolder      string   `json:"account_holder"`
	AccountNo          string   `json:"account_no"`
	IFSC               string   `json:"ifsc"`
	Address1           string   `json:"address_1"`
	Pincode            string   `json:"pincode"`
	City               string   `json:"city"`
	Address2           *string  `json:"address_2,omitempty"`
	Department         string   `json:"department"`
	Projects           []string `json:"projects,omitempty"`
	MonthlyRetainerINR float64  `json:"monthly_retainer_inr"`
	Designation        string   `json:"designation"`
	ApproverUserID     string   `json:"approver_user_id"`
	SignStatus         string   `json:"sign_status,omitempty"`
	Status             string   `json:"status,omitempty"`
}

// UpdateContractorRequest lists every contractor field a caller may change
type UpdateContractorRequest struct {
	Name               *string   `json:"name,omitempty"`
	DOJ                *string   `json:"doj,omitempty"`
	StartDate          *string   `json:"start_date,omitempty"`
	TenureMonths       *int      `json:"tenure_months,omitempty"`
	DOB                *string   `json:"dob,omitempty"`
	Gender             *string   `json:"gender,omitempty"`
	PAN                *string   `json:"pan,omitempty"`
	Aadhar             *string   `json:"aadhar,omitempty"`
	Mobile             *string   `json:"mobile,omitempty"`
	PersonalEmail      *string   `json:"personal_email,omitempty"`
	BankName           *string   `json:"bank_name,omitempty"`
	AccountHolder      *string   `json:"account_holder,omitempty"`
	AccountNo          *string   `json:"account_no,omitempty"`
	IFSC               *string   `json:"ifsc,omitempty"`
	Address1           *string   `json:"address_1,omitempty"`
	Pincode            *string   `json:"pincode,omitempty"`
	City               *string   `json:"city,omitempty"`
	Address2           *string   `json:"address_2,omitempty"`
	Department         *string   `json:"department,omitempty"`
	Projects           *[]string `json:"projects,omitempty"`
	MonthlyRetainerINR *float64  `json:"monthly_retainer_inr,omitempty"`
	Designation        *string   `json:"designation,omitempty"`
	ApproverUserID     *string   `json:"approver_user_id,omitempty"`
	SignStatus         *string   `json:"sign_status,omitempty"`
	Status             *string   `json:"status,omitempty"`
}

// ContractorColumns is the column order used for contractor import and export files.
var ContractorColumns = []string{
	"id", "name", "doj", "start_date", "tenure_months", "end_date", "dob", "gender",
	"pan", "aadhar", "mobile", "personal_email", "bank_name", "account_holder",
	"account_no", "ifsc", "address_1", "pincode", "city", "address_2", "department",
	"projects", "monthly_retainer_inr", "designation", "approver_user_id", "sign_status",
	"status", "agreement_status", "created_at",
}

func nonNegativeMonths(field string, months int) error {
	if months < 0 {
		return apperr.Invalid(field, "must not be negative")
	}
	return nil
}
