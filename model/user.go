package model

import (
	"time"

	"gorm.io/gorm"
)

// User stores a CMS account. Password holds a bcrypt hash and must never be
// serialized into API responses.
type User struct {
	ID        uint   `gorm:"primarykey"`
	Username  string `gorm:"uniqueIndex;size:50;not null"`
	Password  string `gorm:"size:64;not null"`
	Role      string `gorm:"size:16;not null;default:user"`
	Disabled  bool   `gorm:"default:false;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}
