package model

import (
	"time"

	"gorm.io/gorm"
)

// Comment attaches to exactly one of a tutorial or a post. IsAdmin marks
// comments left by an authenticated admin session.
type Comment struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	TutorialID *uint          `gorm:"index" json:"tutorialId,omitempty"`
	PostID     *uint          `gorm:"index" json:"postId,omitempty"`
	Author     string         `gorm:"size:64;not null" json:"author"`
	Content    string         `gorm:"size:4096;not null" json:"content"`
	Votes      int64          `gorm:"default:0;not null" json:"votes"`
	IsAdmin    bool           `gorm:"default:false;not null" json:"isAdmin"`
	CreatedAt  time.Time      `json:"createdAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = GenerateID()
	}
	return nil
}
