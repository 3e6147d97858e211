package content

import (
	"context"
	"errors"

	"github.com/khanghh/ltcms/model"
	"gorm.io/gorm"
)

type PageRepository interface {
	List(ctx context.Context) ([]model.SitePage, error)
	ListNavigation(ctx context.Context) ([]model.SitePage, error)
	Get(ctx context.Context, id uint) (*model.SitePage, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*model.SitePage, error)
	Create(ctx context.Context, page *model.SitePage) error
	Update(ctx context.Context, page *model.SitePage) error
	Delete(ctx context.Context, id uint) error
}

type pageRepository struct {
	db *gorm.DB
}

func (r *pageRepository) List(ctx context.Context) ([]model.SitePage, error) {
	var pages []model.SitePage
	err := r.db.WithContext(ctx).Order("order_index ASC, created_at ASC").Find(&pages).Error
	return pages, err
}

// ListNavigation returns published pages flagged for the nav bar, in display
// order.
func (r *pageRepository) ListNavigation(ctx context.Context) ([]model.SitePage, error) {
	var pages []model.SitePage
	err := r.db.WithContext(ctx).
		Where("show_in_nav = ? AND is_published = ?", true, true).
		Order("order_index ASC").
		Find(&pages).Error
	return pages, err
}

func (r *pageRepository) Get(ctx context.Context, id uint) (*model.SitePage, error) {
	var page model.SitePage
	err := r.db.WithContext(ctx).First(&page, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPublishedBySlug loads a published page with its published posts, sorted
// newest first for display.
func (r *pageRepository) GetPublishedBySlug(ctx context.Context, slug string) (*model.SitePage, error) {
	var page model.SitePage
	err := r.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_published = ?", true).Order("published_at DESC, order_index ASC")
		}).
		Where("slug = ? AND is_published = ?", slug, true).
		First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) Create(ctx context.Context, page *model.SitePage) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *pageRepository) Update(ctx context.Context, page *model.SitePage) error {
	result := r.db.WithContext(ctx).Model(&model.SitePage{}).
		Where("id = ?", page.ID).
		Updates(map[string]interface{}{
			"slug":         page.Slug,
			"title":        page.Title,
			"description":  page.Description,
			"nav_label":    page.NavLabel,
			"show_in_nav":  page.ShowInNav,
			"order_index":  page.OrderIndex,
			"is_published": page.IsPublished,
			"hero":         page.Hero,
			"layout":       page.Layout,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Select("Posts").Delete(&model.SitePage{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db}
}
