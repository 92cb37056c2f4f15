package types

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserType represents user role levels
type UserType string

const (
	UserTypeStudent    UserType = "student"
	UserTypeInstructor UserType = "instructor"
	UserTypeAdmin      UserType = "admin"
	UserTypeAll        UserType = "all"
)

// IsStaff reports whether the role can author course content.
func (u UserType) IsStaff() bool {
	return u == UserTypeInstructor || u == UserTypeAdmin
}

// Valid reports whether the role is one a user can actually hold.
func (u UserType) Valid() bool {
	switch u {
	case UserTypeStudent, UserTypeInstructor, UserTypeAdmin:
		return true
	}
	return false
}

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// Money wraps decimal.Decimal for money values
type Money decimal.Decimal

// NewMoney creates Money from float64
func NewMoney(value float64) Money {
	return Money(decimal.NewFromFloat(value))
}

// NewMoneyFromString creates Money from string
func NewMoneyFromString(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money(d), nil
}

// Float64 returns the float64 representation
func (m Money) Float64() float64 {
	return decimal.Decimal(m).InexactFloat64()
}

// String returns string representation
func (m Money) String() string {
	return decimal.Decimal(m).String()
}

// IsZero returns true if value is zero
func (m Money) IsZero() bool {
	return decimal.Decimal(m).IsZero()
}

// IsNegative returns true if value is below zero
func (m Money) IsNegative() bool {
	return decimal.Decimal(m).IsNegative()
}

// Value implements driver.Valuer for database serialization
func (m Money) Value() (driver.Value, error) {
	return decimal.Decimal(m).Value()
}

// Scan implements sql.Scanner for database deserialization
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return decimal.Decimal(m).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}
