package domain

import "github.com/kiwari-pos/register/internal/enum"

// User is an employee who can log in at the register.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	PINHash string `json:"pin_hash"`
	Role    string `json:"role"`
}

// Identity is the logged-in operator as seen by the engine.
type Identity struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// IdentityOf returns the identity handle for u.
func IdentityOf(u User) Identity {
	return Identity{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	switch role {
	case enum.UserRoleManager, enum.UserRoleSupervisor, enum.UserRoleCashier:
		return true
	}
	return false
}

// CanAdminister reports whether role may use the administration surface.
func CanAdminister(role string) bool {
	return role == enum.UserRoleManager || role == enum.UserRoleSupervisor
}
