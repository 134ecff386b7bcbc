package models

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Role is the back-office role carried in issued tokens
type Role string

const (
	RoleSuperAdmin      Role = "SUPER_ADMIN"
	RoleRestaurantAdmin Role = "RESTAURANT_ADMIN"
)

// PasswordCost is the bcrypt work factor for back-office passwords
const PasswordCost = 12

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleRestaurantAdmin
}

type User struct {
	Base
	Username     string      `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string      `gorm:"column:password;not null" json:"-"`
	Role         Role        `gorm:"type:varchar(32);not null" json:"role"`
	Restaurant   *Restaurant `gorm:"foreignKey:AdminID" json:"restaurant,omitempty"`
}

// SetPassword hashes plain with bcrypt and stores the hash
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares plain against the stored hash
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

var missingUserHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("no-such-user"), PasswordCost)
	return hash
})

// CheckMissingPassword spends the bcrypt work of CheckPassword for a username without an account.
// It always reports false.
func CheckMissingPassword(plain string) bool {
	_ = bcrypt.CompareHashAndPassword(missingUserHash(), []byte(plain))
	return false
}

// RestaurantID returns the id of the restaurant administered by the user, if any
func (u *User) RestaurantID() string {
	if u.Restaurant == nil {
		return ""
	}
	return u.Restaurant.ID
}
