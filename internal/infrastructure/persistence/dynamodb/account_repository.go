package dynamodb

import (
	"context"

	"go.uber.org/zap"

	"github-ddb-backend/internal/domain"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/repository"
)

// UserRepository stores users under ACCOUNT#{username}.
type UserRepository struct {
	base *GenericRepository[domain.User]
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(store persistence.Store, logger *zap.Logger, clock Clock) *UserRepository {
	return &UserRepository{base: NewGenericRepository[domain.User](store, UserCodec{}, named(logger, "users"), clock)}
}

// Create fails with a DuplicateEntityError when the name is taken by a user
// or an organization.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	now := r.base.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	return r.base.Create(ctx, user)
}

func (r *UserRepository) Get(ctx context.Context, username string) (*domain.User, error) {
	return r.base.Get(ctx, AccountKey(username))
}

func (r *UserRepository) Update(ctx context.Context, username string, changes domain.UserUpdate) (domain.User, error) {
	if err := domain.Validate(changes); err != nil {
		return domain.User{}, err
	}
	set := map[string]any{}
	if changes.Email != nil {
		set["Email"] = *changes.Email
	}
	if changes.Bio != nil {
		set["Bio"] = *changes.Bio
	}
	if changes.PaymentPlanID != nil {
		set["PaymentPlanID"] = *changes.PaymentPlanID
	}
	return r.base.Update(ctx, AccountKey(username), set, username)
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	return r.base.Delete(ctx, AccountKey(username))
}

// OrganizationRepository stores organizations under ACCOUNT#{org}.
type OrganizationRepository struct {
	base *GenericRepository[domain.Organization]
}

var _ repository.OrganizationRepository = (*OrganizationRepository)(nil)

func NewOrganizationRepository(store persistence.Store, logger *zap.Logger, clock Clock) *OrganizationRepository {
	return &OrganizationRepository{base: NewGenericRepository[domain.Organization](store, OrganizationCodec{}, named(logger, "organizations"), clock)}
}

func (r *OrganizationRepository) Create(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	now := r.base.Now()
	org.CreatedAt, org.UpdatedAt = now, now
	return r.base.Create(ctx, org)
}

func (r *OrganizationRepository) Get(ctx context.Context, orgName string) (*domain.Organization, error) {
	return r.base.Get(ctx, AccountKey(orgName))
}

func (r *OrganizationRepository) Update(ctx context.Context, orgName string, changes domain.OrganizationUpdate) (domain.Organization, error) {
	if err := domain.Validate(changes); err != nil {
		return domain.Organization{}, err
	}
	set := map[string]any{}
	if changes.Description != nil {
		set["Description"] = *changes.Description
	}
	if changes.PaymentPlanID != nil {
		set["PaymentPlanID"] = *changes.PaymentPlanID
	}
	return r.base.Update(ctx, AccountKey(orgName), set, orgName)
}

func (r *OrganizationRepository) Delete(ctx context.Context, orgName string) error {
	return r.base.Delete(ctx, AccountKey(orgName))
}

// accountExists reports whether a user or organization holds name.
func accountExists(ctx context.Context, store persistence.Store, name string) (bool, error) {
	item, err := store.Get(ctx, AccountKey(name))
	if err != nil || item == nil {
		return false, err
	}
	t := itemType(item)
	return t == itemUser || t == itemOrganization, nil
}

func named(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(name)
}
