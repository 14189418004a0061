// Package service is the thin layer in front of the repositories. It turns
// absent entities into EntityNotFoundError, checks that an update or delete
// target exists before touching the write primitive, and resolves reaction
// addressing once at the boundary.
package service

import (
	"context"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	apperrors "github-ddb-backend/internal/errors"
	"github-ddb-backend/internal/repository"
)

// AccountService manages users and organizations.
type AccountService struct {
	users  repository.UserRepository
	orgs   repository.OrganizationRepository
	logger *zap.Logger
}

func NewAccountService(users repository.UserRepository, orgs repository.OrganizationRepository, logger *zap.Logger) *AccountService {
	return &AccountService{users: users, orgs: orgs, logger: named(logger, "accounts")}
}

func (s *AccountService) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user created", zap.String("username", created.Username))
	return created, nil
}

func (s *AccountService) GetUser(ctx context.Context, username string) (domain.User, error) {
	user, err := s.users.Get(ctx, username)
	return required(user, err, domain.EntityUser, username)
}

// UpdateUser applies changes to an existing user. An empty update returns
// the user unchanged.
func (s *AccountService) UpdateUser(ctx context.Context, username string, changes domain.UserUpdate) (domain.User, error) {
	current, err := s.GetUser(ctx, username)
	if err != nil || changes.Empty() {
		return current, err
	}
	return s.users.Update(ctx, username, changes)
}

func (s *AccountService) DeleteUser(ctx context.Context, username string) error {
	if _, err := s.GetUser(ctx, username); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}

func (s *AccountService) CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	created, err := s.orgs.Create(ctx, org)
	if err != nil {
		return domain.Organization{}, err
	}
	s.logger.Info("organization created", zap.String("org_name", created.OrgName))
	return created, nil
}

func (s *AccountService) GetOrganization(ctx context.Context, orgName string) (domain.Organization, error) {
	org, err := s.orgs.Get(ctx, orgName)
	return required(org, err, domain.EntityOrganization, orgName)
}

func (s *AccountService) UpdateOrganization(ctx context.Context, orgName string, changes domain.OrganizationUpdate) (domain.Organization, error) {
	current, err := s.GetOrganization(ctx, orgName)
	if err != nil || changes.Empty() {
		return current, err
	}
	return s.orgs.Update(ctx, orgName, changes)
}

func (s *AccountService) DeleteOrganization(ctx context.Context, orgName string) error {
	if _, err := s.GetOrganization(ctx, orgName); err != nil {
		return err
	}
	if err := s.orgs.Delete(ctx, orgName); err != nil {
		return err
	}
	s.logger.Info("organization deleted", zap.String("org_name", orgName))
	return nil
}

// required converts the result of a repository point read into a value,
// mapping absence to EntityNotFoundError(entityType, key).
func required[T any](entity *T, err error, entityType, key string) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if entity == nil {
		return zero, apperrors.NewNotFound(entityType, key)
	}
	return *entity, nil
}

func named(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(name)
}
