package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SiteContent maps a named frontend section (hero, header, footer, ...) to an
// arbitrary JSON document edited through the admin UI.
type SiteContent struct {
	Section   string         `gorm:"primaryKey;size:64" json:"section"`
	Content   datatypes.JSON `gorm:"not null" json:"content"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (SiteContent) TableName() string {
	return "site_content"
}

// SitePage is a navigable page that groups posts.
type SitePage struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Slug        string         `gorm:"uniqueIndex;size:128;not null" json:"slug"`
	Title       string         `gorm:"size:256;not null" json:"title"`
	Description string         `gorm:"size:1024;not null" json:"description"`
	NavLabel    *string        `json:"navLabel"`
	ShowInNav   bool           `gorm:"default:false;not null" json:"showInNav"`
	OrderIndex  int64          `gorm:"default:0;not null" json:"orderIndex"`
	IsPublished bool           `gorm:"default:false;not null" json:"isPublished"`
	Hero        datatypes.JSON `gorm:"not null" json:"hero"`
	Layout      datatypes.JSON `gorm:"not null" json:"layout"`
	Posts       []SitePost     `gorm:"foreignKey:PageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"posts,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *SitePage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = GenerateID()
	}
	return nil
}

// SitePost is a blog-style entry belonging to a page. Slug is unique within
// its page only.
type SitePost struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	PageID          uint           `gorm:"index:idx_post_page_slug,unique;not null" json:"pageId"`
	Slug            string         `gorm:"index:idx_post_page_slug,unique;size:128;not null" json:"slug"`
	Title           string         `gorm:"size:256;not null" json:"title"`
	Excerpt         string         `gorm:"size:1024;not null" json:"excerpt"`
	ContentMarkdown string         `gorm:"type:longtext;not null" json:"contentMarkdown"`
	IsPublished     bool           `gorm:"default:false;not null" json:"isPublished"`
	AllowComments   bool           `gorm:"default:true;not null" json:"allowComments"`
	PublishedAt     *time.Time     `json:"publishedAt"`
	OrderIndex      int64          `gorm:"default:0;not null" json:"orderIndex"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *SitePost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = GenerateID()
	}
	return nil
}
