package models

import "opsconsole/lib/apperr"

// ApprovalStatus is the state of an approval request.
type ApprovalStatus string

const (
	ApprovalRequested ApprovalStatus = "Requested"
	ApprovalApproved  ApprovalStatus = "Approved"
	ApprovalRejected  ApprovalStatus = "Rejected"
	ApprovalHold      ApprovalStatus = "Hold"
)

// ApprovalAction is what a Director does to a request.
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
	ActionHold    ApprovalAction = "hold"
)

// Status maps an action onto the status it produces.
func (a ApprovalAction) Status() (ApprovalStatus, error) {
	switch a {
	case ActionApprove:
		return ApprovalApproved, nil
	case ActionReject:
		return ApprovalRejected, nil
	case ActionHold:
		return ApprovalHold, nil
	default:
		return "", apperr.Invalid("action", "must be one of approve, reject, hold")
	}
}

// Approval represents a request to have a record approved. ItemID is a weak
// reference and is not checked against the referenced collection.
type Approval struct {
	ID           string         `json:"id"`
	ItemType     ItemType       `json:"item_type"`
	ItemID       string         `json:"item_id"`
	RequestedBy  string         `json:"requested_by"`
	Status       ApprovalStatus `json:"status"`
	ApprovedBy   *string        `json:"approved_by,omitempty"`
	ApprovedAt   *string        `json:"approved_at,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	StaffRemarks *string        `json:"staff_remarks,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

// RequestApprovalRequest is the optional body of an approval request
type RequestApprovalRequest struct {
	StaffRemarks *string `json:"staff_remarks,omitempty"`
}

// ApprovalActionRequest is the body Directors send to act on a request
type ApprovalActionRequest struct {
	Action ApprovalAction `json:"action"`
	Notes  *string        `json:"notes,omitempty"`
}

// ApprovalFilter narrows an approval listing. Empty fields match everything.
type ApprovalFilter struct {
	ItemType ItemType
	ItemID   string
	Status   ApprovalStatus
}

// ApprovalListResponse represents the response for listing approvals
type ApprovalListResponse struct {
	Approvals []Approval `json:"approvals"`
	Total     int        `json:"total"`
}
