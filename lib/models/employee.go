package models

// Employee represents a salaried member of staff
type Employee struct {
	ID              string   `json:"id"`
	DOJ             string   `json:"doj"`
	WorkEmail       string   `json:"work_email"`
	EmpID           string   `json:"emp_id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	FatherName      string   `json:"father_name"`
	DOB             string   `json:"dob"`
	Gender          string   `json:"gender"`
	Mobile          string   `json:"mobile"`
	PersonalEmail   string   `json:"personal_email"`
	PAN             string   `json:"pan"`
	Aadhar          string   `json:"aadhar"`
	UAN             string   `json:"uan"`
	PFAccountNo     string   `json:"pf_account_no"`
	BankName        string   `json:"bank_name"`
	AccountNo       string   `json:"account_no"`
	IFSC            string   `json:"ifsc"`
	Branch          string   `json:"branch"`
	Address         string   `json:"address"`
	Pincode         string   `json:"pincode"`
	City            string   `json:"city"`
	MonthlyGrossINR float64  `json:"monthly_gross_inr"`
	Department      string   `json:"department"`
	Projects        []string `json:"projects"`
	ApproverUserID  string   `json:"approver_user_id"`
	Status          string   `json:"status"`
	CreatedAt       string   `json:"created_at"`
}

// FullName joins first and last name.
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Validate checks required fields and enum membership.
func (e *Employee) Validate() error {
	return firstError(
		validDate("doj", e.DOJ),
		validEmail("work_email", e.WorkEmail),
		required("emp_id", e.EmpID),
		required("first_name", e.FirstName),
		validDate("dob", e.DOB),
		oneOf("gender", e.Gender, genders),
		required("mobile", e.Mobile),
		validEmail("personal_email", e.PersonalEmail),
		nonNegative("monthly_gross_inr", e.MonthlyGrossINR),
		oneOf("department", e.Department, Departments),
		oneOf("status", e.Status, workerStatuses),
	)
}

// CreateEmployeeRequest represents the request payload for creating an employee
type CreateEmployeeRequest struct {
	DOJ             string   `json:"doj"`
	WorkEmail       string   `json:"work_email"`
	EmpID           string   `json:"emp_id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	FatherName      string   `json:"father_name"`
	DOB             string   `json:"dob"`
	Gender          string   `json:"gender,omitempty"`
	Mobile          string   `json:"mobile"`
	PersonalEmail   string   `json:"personal_email"`
	PAN             string   `json:"pan"`
	Aadhar          string   `json:"aadhar"`
	UAN             string   `json:"uan"`
	PFAccountNo     string   `json:"pf_account_no"`
	BankName        string   `json:"bank_name"`
	AccountNo       string   `json:"account_no"`
	IFSC            string   `json:"ifsc"`
	Branch          string   `json:"branch"`
	Address         string   `json:"address"`
	Pincode         string   `json:"pincode"`
	City            string   `json:"city"`
	MonthlyGrossINR float64  `json:"monthly_gross_inr"`
	Department      string   `json:"department"`
	Projects        []string `json:"projects,omitempty"`
	ApproverUserID  string   `json:"approver_user_id"`
	Status          string   `json:"status,omitempty"`
}

// UpdateEmployeeRequest lists every employee field a caller may change
type UpdateEmployeeRequest struct {
	DOJ             *string   `json:"doj,omitempty"`
	WorkEmail       *string   `json:"work_email,omitempty"`
	EmpID           *string   `json:"emp_id,omitempty"`
	FirstName       *string   `json:"first_name,omitempty"`
	LastName        *string   `json:"last_name,omitempty"`
	FatherName      *string   `json:"father_name,omitempty"`
	DOB             *string   `json:"dob,omitempty"`
	Gender          *string   `json:"gender,omitempty"`
	Mobile          *string   `json:"mobile,omitempty"`
	PersonalEmail   *string   `json:"personal_email,omitempty"`
	PAN             *string   `json:"pan,omitempty"`
	Aadhar          *string   `json:"aadhar,omitempty"`
	UAN             *string   `json:"uan,omitempty"`
	PFAccountNo     *string   `json:"pf_account_no,omitempty"`
	BankName        *string   `json:"bank_name,omitempty"`
	AccountNo       *string   `json:"account_no,omitempty"`
	IFSC            *string   `json:"ifsc,omitempty"`
	Branch          *string   `json:"branch,omitempty"`
	Address         *string   `json:"address,omitempty"`
	Pincode         *string   `json:"pincode,omitempty"`
	City            *string   `json:"city,omitempty"`
	MonthlyGrossINR *float64  `json:"monthly_gross_inr,omitempty"`
	Department      *string   `json:"department,omitempty"`
	Projects        *[]string `json:"projects,omitempty"`
	ApproverUserID  *string   `json:"approver_user_id,omitempty"`
	Status          *string   `json:"status,omitempty"`
}

// EmployeeColumns is the column order used for employee import and export files.
var EmployeeColumns = []string{
	"id", "doj", "work_email", "emp_id", "first_name", "last_name", "father_name", "dob",
	"gender", "mobile", "personal_email", "pan", "aadhar", "uan", "pf_account_no",
	"bank_name", "account_no", "ifsc", "branch", "address", "pincode", "city",
	"monthly_gross_inr", "department", "projects", "approver_user_id", "status", "created_at",
}
