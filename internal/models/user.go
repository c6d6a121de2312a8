package models

import (
	"errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"
	"strings"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	Model
	Username string `gorm:"not null;unique" json:"username" mapstructure:"username"`
	Email    string `gorm:"not null" json:"email" mapstructure:"email"`
	Password string `gorm:"not null" json:"-" mapstructure:"password"`
	Role     string `gorm:"not null;default:user" json:"role" mapstructure:"-"`
}

// Prepare normalizes user input before validation.
func (u *User) Prepare() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
}

// Validate checks the fields required for a login attempt.
func (u *User) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Username, validation.Required.Error("username is required")),
		validation.Field(&u.Password, validation.Required.Error("password is required")),
	)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func Hash(password string) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password must not be empty")
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
