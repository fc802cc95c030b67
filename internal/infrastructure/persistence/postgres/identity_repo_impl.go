package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/domain/repository"
	"github.com/curelink/curelink/pkg/logger"
)

const uniqueViolationCode = "23505"

// IdentityRepoImpl implements IdentityRepository on PostgreSQL via gorm.
type IdentityRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewIdentityRepository creates the PostgreSQL identity repository.
func NewIdentityRepository(db *gorm.DB, log logger.Logger) repository.IdentityRepository {
	return &IdentityRepoImpl{
		db:     db,
		logger: log.WithComponent("identity_repository"),
	}
}

// FindByToken returns the identity for a token, or (nil, nil) when no
// record exists.
func (r *IdentityRepoImpl) FindByToken(ctx context.Context, token string) (*models.AnonymousIdentity, error) {
	var identity models.AnonymousIdentity

	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&identity).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error(ctx, "failed to look up identity by token", err)
		return nil, apperrors.ErrStoreUnavailable("identity lookup failed").WithCause(err)
	}

	return &identity, nil
}

// Create persists a freshly minted identity. A unique-violation on the
// token column is surfaced as a distinct error so the caller can re-mint.
func (r *IdentityRepoImpl) Create(ctx context.Context, identity *models.AnonymousIdentity) error {
	if err := r.db.WithContext(ctx).Create(identity).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			r.logger.Warn(ctx, "identity token collision on create")
			return apperrors.ErrInvalidRequest("identity token already exists").WithCause(err)
		}
		r.logger.Error(ctx, "failed to create identity", err)
		return apperrors.ErrStoreUnavailable("identity create failed").WithCause(err)
	}

	r.logger.Debug(ctx, "identity created")
	return nil
}

// IncrementSearchCount atomically bumps the counter in a single UPDATE.
func (r *IdentityRepoImpl) IncrementSearchCount(ctx context.Context, token string) error {
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.AnonymousIdentity{}).
		Where("token = ?", token).
		Updates(map[string]interface{}{
			"search_count":   gorm.Expr("search_count + 1"),
			"last_search_at": now,
			"updated_at":     now,
		})

	if result.Error != nil {
		r.logger.Error(ctx, "failed to increment identity search count", result.Error)
		return apperrors.ErrStoreUnavailable("identity increment failed").WithCause(result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound("no identity record for token")
	}

	return nil
}
