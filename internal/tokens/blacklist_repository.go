package tokens

import (
	"context"
	"time"

	"github.com/khanghh/ltcms/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlacklistRepository interface {
	Blacklist(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	CleanupExpired(ctx context.Context) error
}

type blacklistRepository struct {
	db *gorm.DB
}

// Blacklist records a revoked token. Re-inserting the same token is a no-op
// so a double logout never fails.
func (r *blacklistRepository) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	entry := model.BlacklistedToken{
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
}

func (r *blacklistRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BlacklistedToken{}).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		Count(&count).Error
	return count > 0, err
}

// CleanupExpired removes entries whose underlying tokens can no longer
// verify anyway.
func (r *blacklistRepository) CleanupExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.BlacklistedToken{}).Error
}

func NewBlacklistRepository(db *gorm.DB) BlacklistRepository {
	return &blacklistRepository{db}
}
