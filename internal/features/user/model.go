package user

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mo-amir99/course-progress-server/pkg/types"
)

const bcryptCost = 10

// User represents a system user.
type User struct {
	types.BaseModel

	FullName string         `gorm:"type:varchar(100);not null;column:full_name" json:"fullName"`
	Email    string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password string         `gorm:"type:varchar(255);not null" json:"-"`
	Role     types.UserType `gorm:"type:varchar(20);not null;default:'student';index" json:"role"`
	Active   bool           `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// SetPassword hashes and stores password.
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ComparePassword checks if the provided password matches the user's hashed password.
func (u *User) ComparePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
