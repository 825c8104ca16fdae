package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/pagination"
)

// Store is the persistence surface the back-office user service depends on.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params pagination.Params) ([]models.User, *string, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes back-office user management.
type Service struct {
	store Store
}

// NewService builds a user management service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("user store required")
	}
	return &Service{store: store}, nil
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, params pagination.Params) (*UserList, error) {
	users, next, err := s.store.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *FromModel(&users[i]))
	}
	return &UserList{Users: out, NextCursor: next}, nil
}

// Get loads one user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

// Update applies a partial update. Role changes require a valid role and an
// acting admin other than the target, so an administrator cannot demote
// themselves.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
		}
		user.FullName = name
	}
	if input.Role != nil {
		role, err := enums.ParseUserRole(*input.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		if id == actorID && role != user.Role {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot change own role")
		}
		user.Role = role
	}

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save user")
	}
	return FromModel(saved), nil
}

// Delete removes a user account. Administrators cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if id == actorID {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete own account")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}
