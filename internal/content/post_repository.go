package content

import (
	"context"
	"errors"

	"github.com/khanghh/ltcms/model"
	"gorm.io/gorm"
)

type PostRepository interface {
	ListByPage(ctx context.Context, pageID uint) ([]model.SitePost, error)
	Get(ctx context.Context, id uint) (*model.SitePost, error)
	GetPublishedBySlug(ctx context.Context, pageSlug string, postSlug string) (*model.SitePost, error)
	Create(ctx context.Context, post *model.SitePost) error
	Update(ctx context.Context, post *model.SitePost) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

func (r *postRepository) ListByPage(ctx context.Context, pageID uint) ([]model.SitePost, error) {
	var posts []model.SitePost
	err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("order_index ASC, created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Get(ctx context.Context, id uint) (*model.SitePost, error) {
	var post model.SitePost
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPublishedBySlug resolves a post by its page and post slugs, both
// required to be published. Post slugs are only unique within one page.
func (r *postRepository) GetPublishedBySlug(ctx context.Context, pageSlug string, postSlug string) (*model.SitePost, error) {
	var post model.SitePost
	err := r.db.WithContext(ctx).
		Joins("JOIN site_pages ON site_pages.id = site_posts.page_id").
		Where("site_pages.slug = ? AND site_pages.is_published = ? AND site_pages.deleted_at IS NULL", pageSlug, true).
		Where("site_posts.slug = ? AND site_posts.is_published = ?", postSlug, true).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *model.SitePost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, post *model.SitePost) error {
	result := r.db.WithContext(ctx).Model(&model.SitePost{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"slug":             post.Slug,
			"title":            post.Title,
			"excerpt":          post.Excerpt,
			"content_markdown": post.ContentMarkdown,
			"is_published":     post.IsPublished,
			"allow_comments":   post.AllowComments,
			"published_at":     post.PublishedAt,
			"order_index":      post.OrderIndex,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.SitePost{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db}
}
