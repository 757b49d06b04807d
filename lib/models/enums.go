package models

import (
	"strings"

	"opsconsole/lib/apperr"
)

// Role is the console role carried by every actor.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleDirector Role = "Director"
	RoleStaff    Role = "Staff"
)

// Valid reports whether r is one of the three console roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleStaff:
		return true
	}
	return false
}

// ItemType discriminates the records that can be sent for approval.
type ItemType string

const (
	ItemClient     ItemType = "client"
	ItemContractor ItemType = "contractor"
	ItemEmployee   ItemType = "employee"
)

// ParseItemType validates s as an approvable item type.
func ParseItemType(s string) (ItemType, error) {
	switch t := ItemType(s); t {
	case ItemClient, ItemContractor, ItemEmployee:
		return t, nil
	}
	return "", apperr.Invalid("item_type", "must be one of client, contractor, employee")
}

// Department values shared by contractors, employees and assets. Client
// services use the first four.
const (
	DepartmentPPC                 = "PPC"
	DepartmentSEO                 = "SEO"
	DepartmentContent             = "Content"
	DepartmentBacklink            = "Backlink"
	DepartmentBusinessDevelopment = "Business Development"
	DepartmentOthers              = "Others"
)

// Departments lists every department in reporting order.
var Departments = []string{
	DepartmentPPC,
	DepartmentSEO,
	DepartmentContent,
	DepartmentBacklink,
	DepartmentBusinessDevelopment,
	DepartmentOthers,
}

// Services lists the services a client can buy.
var Services = []string{DepartmentPPC, DepartmentSEO, DepartmentContent, DepartmentBacklink}

const (
	CurrencyUSD = "USD"
	CurrencyINR = "INR"

	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"

	SignStatusSigned    = "Signed"
	SignStatusNotSigned = "Not signed"

	ClientStatusActive  = "Active"
	ClientStatusChurned = "Churned"

	StatusActive     = "Active"
	StatusTerminated = "Terminated"

	UserStatusActive  = "Active"
	UserStatusInvited = "Invited"
)

var (
	currencies      = []string{CurrencyUSD, CurrencyINR}
	genders         = []string{GenderMale, GenderFemale, GenderOther}
	signStatuses    = []string{SignStatusSigned, SignStatusNotSigned}
	clientStatuses  = []string{ClientStatusActive, ClientStatusChurned}
	workerStatuses  = []string{StatusActive, StatusTerminated}
	userStatuses    = []string{UserStatusActive, UserStatusInvited}
	agreementStates = []string{"Live", "Expired"}
)

func oneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperr.Invalid(field, "must be one of %s", strings.Join(allowed, ", "))
}
