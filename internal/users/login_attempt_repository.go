package users

import (
	"context"
	"errors"
	"time"

	"github.com/khanghh/ltcms/model"
	"github.com/khanghh/ltcms/params"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoginAttemptRepository interface {
	Get(ctx context.Context, key string) (*model.LoginAttempt, error)
	RecordFailure(ctx context.Context, key string, shortBlock time.Time, longBlock time.Time) error
	Clear(ctx context.Context, key string) error
}

type loginAttemptRepository struct {
	db *gorm.DB
}

func (r *loginAttemptRepository) Get(ctx context.Context, key string) (*model.LoginAttempt, error) {
	var attempt model.LoginAttempt
	err := r.db.WithContext(ctx).Where("attempt_key = ?", key).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// RecordFailure increments the failure counter and derives the lockout tier
// in one upsert. Doing it in a single statement keeps concurrent failed
// logins from losing counts; fail_count in the CASE refers to the stored row
// before the increment, so the thresholds compare against the new value
// minus one.
func (r *loginAttemptRepository) RecordFailure(ctx context.Context, key string, shortBlock time.Time, longBlock time.Time) error {
	attempt := model.LoginAttempt{
		AttemptKey: key,
		FailCount:  1,
		UpdatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"fail_count": gorm.Expr("fail_count + 1"),
			"blocked_until": gorm.Expr(
				"CASE WHEN fail_count + 1 >= ? THEN ? WHEN fail_count + 1 >= ? THEN ? ELSE NULL END",
				params.LoginLongBlockFailCount, longBlock,
				params.LoginShortBlockFailCount, shortBlock,
			),
			"updated_at": time.Now(),
		}),
	}).Create(&attempt).Error
}

func (r *loginAttemptRepository) Clear(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("attempt_key = ?", key).Delete(&model.LoginAttempt{}).Error
}

func NewLoginAttemptRepository(db *gorm.DB) LoginAttemptRepository {
	return &loginAttemptRepository{db}
}
