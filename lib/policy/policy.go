// Package policy decides which console role may perform which action.
package policy

import (
	"sort"

	"opsconsole/lib/apperr"
	"opsconsole/lib/models"
)

// Action names a guarded operation.
type Action string

const (
	CreateUser      Action = "create_user"
	UpdateUser      Action = "update_user"
	DeleteUser      Action = "delete_user"
	CreateRecord    Action = "create_record"
	UpdateRecord    Action = "update_record"
	DeleteRecord    Action = "delete_record"
	ImportRecords   Action = "import_records"
	RequestApproval Action = "request_approval"
	ActOnApproval   Action = "act_on_approval"
	ResetApprovals  Action = "reset_approvals"
)

// Resource carries the state some rules depend on. TargetRole is the current
// role of the user being changed or deleted; NewRole is the requested role.
type Resource struct {
	Kind       string
	TargetRole models.Role
	NewRole    *models.Role
}

type rule struct {
	allowed []models.Role
	text    string
	// deny is consulted after the role check and may veto on resource state.
	deny func(Resource) (string, bool)
}

var rules = map[Action]rule{
	CreateUser: {
		allowed: []models.Role{models.RoleAdmin},
		text:    "only Admin may create users",
	},
	UpdateUser: {
		allowed: []models.Role{models.RoleAdmin},
		text:    "only Admin may update users",
		deny: func(r Resource) (string, bool) {
			if r.TargetRole == models.RoleAdmin && r.NewRole != nil && *r.NewRole != models.RoleAdmin {
				return "an Admin's role cannot be changed", true
			}
			return "", false
		},
	},
	DeleteUser: {
		allowed: []models.Role{models.RoleAdmin},
		text:    "only Admin may delete users",
		deny: func(r Resource) (string, bool) {
			if r.TargetRole == models.RoleAdmin {
				return "Admin users cannot be deleted", true
			}
			return "", false
		},
	},
	CreateRecord: {
		allowed: []models.Role{models.RoleAdmin, models.RoleDirector, models.RoleStaff},
		text:    "records may be created by any role",
	},
	UpdateRecord: {
		allowed: []models.Role{models.RoleAdmin, models.RoleDirector, models.RoleStaff},
		text:    "records may be updated by any role",
	},
	DeleteRecord: {
		allowed: []models.Role{models.RoleAdmin, models.RoleDirector},
		text:    "only Admin or Director may delete records",
	},
	ImportRecords: {
		allowed: []models.Role{models.RoleAdmin, models.RoleDirector},
		text:    "only Admin or Director may bulk import records",
	},
	RequestApproval: {
		allowed: []models.Role{models.RoleAdmin, models.RoleStaff},
		text:    "only Admin or Staff may request approval",
	},
	ActOnApproval: {
		allowed: []models.Role{models.RoleDirector},
		text:    "only Director may act on approvals",
	},
	ResetApprovals: {
		allowed: []models.Role{models.RoleAdmin, models.RoleStaff},
		text:    "only Admin or Staff may reset approvals",
	},
}

// Authorize returns nil when role may perform action on res, and a
// *apperr.PermissionDeniedError naming the violated rule otherwise.
// Unknown actions are denied.
func Authorize(role models.Role, action Action, res Resource) error {
	r, ok := rules[action]
	if !ok {
		return apperr.Denied(string(role), string(action), "unknown action")
	}
	if !contains(r.allowed, role) {
		return apperr.Denied(string(role), string(action), r.text)
	}
	if r.deny != nil {
		if reason, denied := r.deny(res); denied {
			return apperr.Denied(string(role), string(action), reason)
		}
	}
	return nil
}

// Allowed lists the roles that may perform action, ignoring resource state.
func Allowed(action Action) []models.Role {
	r, ok := rules[action]
	if !ok {
		return nil
	}
	out := make([]models.Role, len(r.allowed))
	copy(out, r.allowed)
	return out
}

// Permitted lists, in name order, the actions role may perform when no
// resource state vetoes them.
func Permitted(role models.Role) []Action {
	var out []Action
	for action, r := range rules {
		if contains(r.allowed, role) {
			out = append(out, action)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func contains(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
