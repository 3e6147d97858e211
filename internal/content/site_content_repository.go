package content

import (
	"context"
	"errors"
	"time"

	"github.com/khanghh/ltcms/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteContentRepository interface {
	List(ctx context.Context) ([]model.SiteContent, error)
	Get(ctx context.Context, section string) (*model.SiteContent, error)
	Upsert(ctx context.Context, section string, content datatypes.JSON) error
}

type siteContentRepository struct {
	db *gorm.DB
}

func (r *siteContentRepository) List(ctx context.Context) ([]model.SiteContent, error) {
	var sections []model.SiteContent
	err := r.db.WithContext(ctx).Order("section ASC").Find(&sections).Error
	return sections, err
}

func (r *siteContentRepository) Get(ctx context.Context, section string) (*model.SiteContent, error) {
	var content model.SiteContent
	err := r.db.WithContext(ctx).First(&content, "section = ?", section).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *siteContentRepository) Upsert(ctx context.Context, section string, content datatypes.JSON) error {
	entry := model.SiteContent{
		Section:   section,
		Content:   content,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "section"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&entry).Error
}

func NewSiteContentRepository(db *gorm.DB) SiteContentRepository {
	return &siteContentRepository{db}
}
