package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tutorial is a learning module rendered by the frontend. Topics is a JSON
// array of topic strings; Content holds the full markdown body.
type Tutorial struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"size:256;not null" json:"title"`
	Description string         `gorm:"size:1024;not null" json:"description"`
	Icon        string         `gorm:"size:64;not null" json:"icon"`
	Color       string         `gorm:"size:64;not null" json:"color"`
	Topics      datatypes.JSON `gorm:"not null" json:"topics"`
	Content     string         `gorm:"type:longtext;not null" json:"content"`
	Version     int64          `gorm:"not null;default:1" json:"version"` // bumped on every update, optimistic concurrency
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Tutorial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = GenerateID()
	}
	return nil
}
