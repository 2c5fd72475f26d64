package service

import "github.com/sefazor/fanvault-backend/internal/models"

type Action string

const (
	ActionAdmin          Action = "admin"
	ActionManageCreator  Action = "creator:manage"
	ActionManageAgency   Action = "agency:manage"
	ActionChatterWork    Action = "chatter:work"
	ActionOwnResource    Action = "resource:own"
	ActionPayChatterWork Action = "chatter:pay"
)

// Resource carries the ownership facts a decision needs. Zero ids mean the
// fact does not apply.
type Resource struct {
	OwnerID       uint
	AgencyOwnerID uint
}

// Authorize is the single access decision point. Admins may do anything;
// everyone else needs the ownership or role the action names.
func Authorize(actor models.Actor, action Action, res Resource) bool {
	if actor.UserID == 0 {
		return false
	}
	if actor.IsAdmin() {
		return true
	}

	switch action {
	case ActionManageCreator, ActionOwnResource:
		return res.OwnerID != 0 && res.OwnerID == actor.UserID
	case ActionManageAgency, ActionPayChatterWork:
		return res.AgencyOwnerID != 0 && res.AgencyOwnerID == actor.UserID
	case ActionChatterWork:
		return actor.Role == models.RoleChatter
	}
	return false
}
