package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
)

// AllowedUserFilter narrows an allow-list query. Zero-valued fields are
// wildcards; set fields are AND-combined.
type AllowedUserFilter struct {
	PackageID string
	UserName  string
}

// Repository is the persistence layer for the per-dataset allow-list.
type Repository interface {
	EnsureSchema(ctx context.Context) error

	ListAllowedUsers(ctx context.Context, filter AllowedUserFilter) ([]*datamodel.AllowedUser, error)
	AddAllowedUser(ctx context.Context, packageID string, userName string) error
	DeleteAllowedUser(ctx context.Context, packageID string, userName string) error
	DeleteAllowedUsersByPackage(ctx context.Context, packageID string) error

	// WithTransaction runs fn against a repository bound to a single
	// database transaction, so a reconciliation delta commits or rolls
	// back as one unit.
	WithTransaction(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository initiates a repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// EnsureSchema creates the package_allowed_users table if it does not
// exist. Safe to call repeatedly.
func (r *repository) EnsureSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&datamodel.AllowedUser{})
}

func (r *repository) ListAllowedUsers(ctx context.Context, filter AllowedUserFilter) ([]*datamodel.AllowedUser, error) {
	queryBuilder := r.db.WithContext(ctx).Model(&datamodel.AllowedUser{})
	if filter.PackageID != "" {
		queryBuilder = queryBuilder.Where("package_id = ?", filter.PackageID)
	}
	if filter.UserName != "" {
		queryBuilder = queryBuilder.Where("user_name = ?", filter.UserName)
	}

	var entries []*datamodel.AllowedUser
	if err := queryBuilder.Order("package_id, user_name").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) AddAllowedUser(ctx context.Context, packageID string, userName string) error {
	entry := datamodel.AllowedUser{PackageID: packageID, UserName: userName}
	if result := r.db.WithContext(ctx).Create(&entry); result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" || errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return result.Error
	}
	return nil
}

func (r *repository) DeleteAllowedUser(ctx context.Context, packageID string, userName string) error {
	result := r.db.WithContext(ctx).
		Where("package_id = ? AND user_name = ?", packageID, userName).
		Delete(&datamodel.AllowedUser{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoDataDeleted
	}
	return nil
}

func (r *repository) DeleteAllowedUsersByPackage(ctx context.Context, packageID string) error {
	return r.db.WithContext(ctx).
		Where("package_id = ?", packageID).
		Delete(&datamodel.AllowedUser{}).Error
}

func (r *repository) WithTransaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}
