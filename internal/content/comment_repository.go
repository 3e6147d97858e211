package content

import (
	"context"

	"github.com/khanghh/ltcms/model"
	"gorm.io/gorm"
)

type CommentRepository interface {
	ListByTutorial(ctx context.Context, tutorialID uint) ([]model.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]model.Comment, error)
	Create(ctx context.Context, comment *model.Comment) error
	Vote(ctx context.Context, id uint, delta int64) (*model.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func (r *commentRepository) ListByTutorial(ctx context.Context, tutorialID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("tutorial_id = ?", tutorialID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Vote applies the delta as a relative update so concurrent votes are not
// lost, then reloads the row for the response.
func (r *commentRepository) Vote(ctx context.Context, id uint, delta int64) (*model.Comment, error) {
	result := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Update("votes", gorm.Expr("votes + ?", delta))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db}
}
