package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/folio-site/folio/internal/models"
)

// CreateUser stores a new account. The password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return fmt.Errorf("username is required")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("unknown role %q", user.Role)
	}
	return s.conn(ctx).Create(user).Error
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user #%d", id)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by login name
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user %q", username)
	}
	return &user, nil
}

// ListUsers returns all accounts ordered by username
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
