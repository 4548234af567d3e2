package service

import (
	"errors"

	"github.com/kiwari-pos/register/internal/domain"
)

// Errors returned by the register engine.
var (
	// validation
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInsufficientStock  = errors.New("not enough stock")
	ErrInvalidDiscount    = errors.New("discount must be between 0 and 100")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrEmptyCategory      = errors.New("category name cannot be empty")
	ErrDuplicateCategory  = errors.New("category already exists")
	ErrInvalidUser        = errors.New("invalid user")
	ErrInvalidPIN         = errors.New("PIN must be exactly 4 digits")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidRange       = errors.New("invalid report range")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// integrity
	ErrNoIdentity      = errors.New("no user logged in")
	ErrAlreadyRefunded = errors.New("order already refunded")
	ErrCategoryInUse   = errors.New("category is in use by a product")
	ErrLastManager     = errors.New("at least one manager must exist")

	// not found
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
)

// IsValidation reports whether err is an input rejection.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrOutOfStock, ErrInsufficientStock, ErrInvalidDiscount, ErrEmptyCart,
		ErrInvalidProduct, ErrUnknownCategory, ErrEmptyCategory, ErrDuplicateCategory,
		ErrInvalidUser, ErrInvalidPIN, ErrInvalidRole, ErrInvalidRange,
		domain.ErrInvalidSettings,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsIntegrity reports whether err is a refused state transition.
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrNoIdentity) ||
		errors.Is(err, ErrAlreadyRefunded) ||
		errors.Is(err, ErrCategoryInUse) ||
		errors.Is(err, ErrLastManager)
}

// IsNotFound reports whether err names a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
