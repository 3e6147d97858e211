package content

import (
	"context"
	"errors"

	"github.com/khanghh/ltcms/model"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
)

type TutorialRepository interface {
	List(ctx context.Context) ([]model.Tutorial, error)
	Get(ctx context.Context, id uint) (*model.Tutorial, error)
	Create(ctx context.Context, tutorial *model.Tutorial) error
	Update(ctx context.Context, tutorial *model.Tutorial) error
	Delete(ctx context.Context, id uint) error
}

type tutorialRepository struct {
	db *gorm.DB
}

func (r *tutorialRepository) List(ctx context.Context) ([]model.Tutorial, error) {
	var tutorials []model.Tutorial
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&tutorials).Error
	return tutorials, err
}

func (r *tutorialRepository) Get(ctx context.Context, id uint) (*model.Tutorial, error) {
	var tutorial model.Tutorial
	err := r.db.WithContext(ctx).First(&tutorial, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tutorial, nil
}

func (r *tutorialRepository) Create(ctx context.Context, tutorial *model.Tutorial) error {
	return r.db.WithContext(ctx).Create(tutorial).Error
}

// Update bumps Version as part of the WHERE guard. A stale writer matches no
// rows and gets ErrVersionConflict instead of silently overwriting.
func (r *tutorialRepository) Update(ctx context.Context, tutorial *model.Tutorial) error {
	result := r.db.WithContext(ctx).Model(&model.Tutorial{}).
		Where("id = ? AND version = ?", tutorial.ID, tutorial.Version).
		Updates(map[string]interface{}{
			"title":       tutorial.Title,
			"description": tutorial.Description,
			"icon":        tutorial.Icon,
			"color":       tutorial.Color,
			"topics":      tutorial.Topics,
			"content":     tutorial.Content,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Tutorial{}).Where("id = ?", tutorial.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	tutorial.Version++
	return nil
}

func (r *tutorialRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Tutorial{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func NewTutorialRepository(db *gorm.DB) TutorialRepository {
	return &tutorialRepository{db}
}
