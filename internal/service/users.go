package service

import (
	"fmt"
	"strings"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

const pinLength = 4

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

// UserInput is the input for adding or updating a user. On update an empty
// PIN keeps the current one.
type UserInput struct {
	Name string
	PIN  string
	Role string
}

// Users owns the employee list and enforces that a manager always exists.
// Ids of deleted users are never reissued: a token minted for them stays
// valid until the end of the shift.
type Users struct {
	users  []domain.User
	lastID int64
}

// NewUsers returns a user list holding a copy of users.
func NewUsers(users []domain.User) *Users {
	u := &Users{users: append([]domain.User(nil), users...)}
	for _, x := range u.users {
		u.reserve(x.ID)
	}
	return u
}

// LastID returns the highest user id issued so far.
func (u *Users) LastID() int64 { return u.lastID }

func (u *Users) reserve(id int64) {
	if id > u.lastID {
		u.lastID = id
	}
}

// List returns every user.
func (u *Users) List() []domain.User {
	return append([]domain.User(nil), u.users...)
}

// Get returns user id.
func (u *Users) Get(id int64) (domain.User, error) {
	i := u.index(id)
	if i < 0 {
		return domain.User{}, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return u.users[i], nil
}

// Add creates a user with the next unissued id.
func (u *Users) Add(in UserInput) (domain.User, error) {
	if err := validateUser(in, true); err != nil {
		return domain.User{}, err
	}
	hash, err := HashPIN(in.PIN)
	if err != nil {
		return domain.User{}, err
	}
	u.lastID++
	user := domain.User{ID: u.lastID, Name: strings.TrimSpace(in.Name), PINHash: hash, Role: in.Role}
	u.users = append(u.users, user)
	return user, nil
}

// Update changes the name, role and optionally the PIN of user id.
// Demoting the last manager is rejected.
func (u *Users) Update(id int64, in UserInput) (domain.User, error) {
	i := u.index(id)
	if i < 0 {
		return domain.User{}, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	if err := validateUser(in, false); err != nil {
		return domain.User{}, err
	}
	cur := u.users[i]
	if cur.Role == enum.UserRoleManager && in.Role != enum.UserRoleManager && u.managers() == 1 {
		return domain.User{}, ErrLastManager
	}
	next := cur
	next.Name = strings.TrimSpace(in.Name)
	next.Role = in.Role
	if in.PIN != "" {
		hash, err := HashPIN(in.PIN)
		if err != nil {
			return domain.User{}, err
		}
		next.PINHash = hash
	}
	u.users[i] = next
	return next, nil
}

// Delete removes user id. The last manager cannot be deleted.
func (u *Users) Delete(id int64) error {
	i := u.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	if u.users[i].Role == enum.UserRoleManager && u.managers() == 1 {
		return ErrLastManager
	}
	u.users = append(u.users[:i:i], u.users[i+1:]...)
	return nil
}

// Authenticate checks pin against user id and returns the user.
func (u *Users) Authenticate(id int64, pin string) (domain.User, error) {
	i := u.index(id)
	if i < 0 {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.users[i].PINHash), []byte(pin)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u.users[i], nil
}

// HashPIN validates and hashes a PIN.
func HashPIN(pin string) (string, error) {
	if !validPIN(pin) {
		return "", ErrInvalidPIN
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(b), nil
}

func (u *Users) managers() int {
	n := 0
	for _, x := range u.users {
		if x.Role == enum.UserRoleManager {
			n++
		}
	}
	return n
}

func (u *Users) index(id int64) int {
	for i, x := range u.users {
		if x.ID == id {
			return i
		}
	}
	return -1
}

func validateUser(in UserInput, pinRequired bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	}
	if !domain.IsValidRole(in.Role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	if in.PIN == "" && !pinRequired {
		return nil
	}
	if !validPIN(in.PIN) {
		return ErrInvalidPIN
	}
	return nil
}

func validPIN(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
