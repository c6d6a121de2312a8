package auth

import (
	"blog-admin/internal/environment"
	"blog-admin/internal/models"
	"context"
	"errors"
)

var ErrLoginFailed = errors.New("username or password false")

type AuthService struct {
	*environment.Env
}

// DoLogin checks the credentials of user against the stored bcrypt hash.
// On success user carries the stored id and role.
func (s *AuthService) DoLogin(ctx context.Context, user *models.User) error {
	var foundUser models.User

	err := s.FindUserLoginCredentials(ctx, user.Username, &foundUser)
	if err != nil {
		return ErrLoginFailed
	}
	if err = models.VerifyPassword(foundUser.Password, user.Password); err != nil {
		return ErrLoginFailed
	}

	user.ID = foundUser.ID
	user.Role = foundUser.Role
	return nil
}

// RegisterUser hashes the password of user and stores the user.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	user.Prepare()
	if err := user.Validate(); err != nil {
		return err
	}
	if len(user.Role) == 0 {
		user.Role = models.RoleUser
	}

	hash, err := models.Hash(user.Password)
	if err != nil {
		return err
	}
	user.Password = string(hash)

	return s.CreateUser(ctx, user)
}
