// Package policy holds the role and ownership checks shared by the
// controllers. Every check is re-run per request; nothing is cached.
package policy

import (
	"slices"
	"topup/internal/models"
	"topup/internal/types"
)

// Authenticated fails when no principal is present.
func Authenticated(user *models.User) error {
	if user == nil {
		return types.Unauthorized("")
	}
	return nil
}

func HasRole(user *models.User, roles ...models.Role) bool {
	return user != nil && slices.Contains(roles, user.Role)
}

// RequireRole returns Unauthorized without a principal and Forbidden with
// message when the principal holds none of roles.
func RequireRole(user *models.User, message string, roles ...models.Role) error {
	if err := Authenticated(user); err != nil {
		return err
	}
	if !HasRole(user, roles...) {
		return types.Forbidden(message)
	}
	return nil
}

func OwnsApartment(user *models.User, apartment *models.Apartment) bool {
	return user != nil && apartment != nil && apartment.IsOwnedBy(user.ID)
}

// ManagesApartment is true for admins and the apartment's owner.
func ManagesApartment(user *models.User, apartment *models.Apartment) bool {
	return user.IsAdmin() || (HasRole(user, models.RoleOwner) && OwnsApartment(user, apartment))
}

// CanViewShift scopes shift reads: operators see their own, owners the
// shifts of their apartments, admins and viewers everything.
func CanViewShift(user *models.User, shift *models.CleaningShift) bool {
	if user == nil || shift == nil {
		return false
	}
	switch user.Role {
	case models.RoleAdmin, models.RoleViewer:
		return true
	case models.RoleOperator:
		return shift.IsAssignedTo(user.ID)
	case models.RoleOwner:
		return OwnsApartment(user, shift.Apartment)
	}
	return false
}

// CanCommentOnShift returns the Forbidden error for a principal who may not
// comment on shift, or nil.
func CanCommentOnShift(user *models.User, shift *models.CleaningShift) error {
	if err := Authenticated(user); err != nil {
		return err
	}
	switch user.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleOperator:
		if !shift.IsAssignedTo(user.ID) {
			return types.Forbidden("Forbidden: You can only comment on your own shifts")
		}
		return nil
	case models.RoleOwner:
		if !OwnsApartment(user, shift.Apartment) {
			return types.Forbidden("Forbidden: You can only comment on shifts for your apartments")
		}
		return nil
	}
	return types.Forbidden("")
}

// CanDeleteShift allows admins any shift and owners only shifts they created
// on an apartment they own.
func CanDeleteShift(user *models.User, shift *models.CleaningShift) error {
	if err := Authenticated(user); err != nil {
		return err
	}
	switch user.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleOwner:
		if shift.CreatedByID != user.ID {
			return types.Forbidden("Forbidden: You can only delete shifts that you created")
		}
		if !OwnsApartment(user, shift.Apartment) {
			return types.Forbidden("Forbidden: You can only delete shifts for your own apartments")
		}
		return nil
	}
	return types.Forbidden("")
}

// CanRequestTimeChange covers who may stage a proposal on shift.
func CanRequestTimeChange(user *models.User, shift *models.CleaningShift) bool {
	switch {
	case user == nil:
		return false
	case user.IsAdmin():
		return true
	case user.Role == models.RoleOperator:
		return shift.IsAssignedTo(user.ID)
	case user.Role == models.RoleOwner:
		return OwnsApartment(user, shift.Apartment)
	}
	return false
}
