package models

import "opsconsole/lib/apperr"

// Actor is the authenticated caller of an operation
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// User represents a console login
type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Mobile    *string `json:"mobile,omitempty"`
	Role      Role    `json:"role"`
	Status    string  `json:"status"`
	CognitoID string  `json:"cognito_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// Validate checks required fields and enum membership.
func (u *User) Validate() error {
	if !u.Role.Valid() {
		return apperr.Invalid("role", "must be one of Admin, Director, Staff")
	}
	return firstError(
		required("name", u.Name),
		validEmail("email", u.Email),
		oneOf("status", u.Status, userStatuses),
	)
}

// CreateUserRequest represents the request payload for inviting a user
type CreateUserRequest struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Mobile *string `json:"mobile,omitempty"`
	Role   Role    `json:"role"`
}

// UpdateUserRequest represents the request payload for changing a user
type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty"`
	Mobile *string `json:"mobile,omitempty"`
	Role   *Role   `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// UserListResponse represents the response for listing users
type UserListResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}
