package rbac

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tasktrack/tasktrack/internal/shared"
)

// Check is a single capability check against a principal. A nil error allows.
type Check func(Principal) error

// RoleGate allows only principals whose role equals required.
func RoleGate(required Role) Check {
	message := fmt.Sprintf("Access denied. %s privileges required.", cases.Title(language.English).String(string(required)))
	return func(p Principal) error {
		switch p.Role {
		case RoleUser, RoleAdmin:
			if required.Valid() && p.Role == required {
				return nil
			}
		}
		return shared.Forbidden(ReasonRole, message)
	}
}

// OwnershipGate allows the owner of a resource and, unconditionally, admins.
func OwnershipGate(ownerID string) Check {
	return func(p Principal) error {
		switch p.Role {
		case RoleAdmin:
			return nil
		case RoleUser:
			if ownerID != "" && p.ID == ownerID {
				return nil
			}
		}
		return shared.Forbidden(ReasonNotOwner, MsgNotAuthorized)
	}
}

// Chain runs checks in order and stops at the first denial.
func Chain(checks ...Check) Check {
	return func(p Principal) error {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(p); err != nil {
				return err
			}
		}
		return nil
	}
}

// Evaluate decides req. The role constraint is applied before ownership.
func Evaluate(req AccessRequest) error {
	var checks []Check
	if req.RequiredRole != "" {
		checks = append(checks, RoleGate(req.RequiredRole))
	}
	if req.OwnershipRequired || req.ResourceOwnerID != "" {
		checks = append(checks, OwnershipGate(req.ResourceOwnerID))
	}
	return Chain(checks...)(req.Principal)
}
