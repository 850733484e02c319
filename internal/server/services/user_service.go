package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/models"
	"github.com/thermolog/thermolog/pkg/utils"
)

// UserService implements admin user management. All callers are expected to
// have passed the admin middleware already.
type UserService struct {
	userRepo *storage.UserRepository
}

func NewUserService(userRepo *storage.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Create(ctx context.Context, username, password, role, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, fmt.Errorf("%w: role must be admin or user", ErrValidation)
	}
	if email != "" && !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Email:        email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update changes role, password and/or email; empty fields are untouched.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if req.Role != "" {
		role := strings.ToLower(strings.TrimSpace(req.Role))
		if role != models.RoleAdmin && role != models.RoleUser {
			return nil, fmt.Errorf("%w: role must be admin or user", ErrValidation)
		}
		if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
			return nil, fmt.Errorf("failed to update role: %w", err)
		}
		user.Role = role
	}

	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}
		user.PasswordHash = hash
	}

	if req.Email != "" {
		if !utils.IsValidEmail(req.Email) {
			return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
		}
		if err := s.userRepo.UpdateEmail(ctx, id, req.Email); err != nil {
			return nil, fmt.Errorf("failed to update email: %w", err)
		}
		user.Email = req.Email
	}

	return user, nil
}

// Delete removes a user. Admins cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	if id == requesterID {
		return ErrSelfDelete
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
