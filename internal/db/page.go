package db

import "time"

// Page is a content page addressed by its slug.
// UpdatedAt stays NULL until the first update.
type Page struct {
	ID        uint   `gorm:"primarykey"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text"`
	Slug      string `gorm:"size:191;uniqueIndex;not null"`
	Sequence  int    `gorm:"not null;default:0;index"`
	CreatedAt time.Time
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`
	Pictures  []Picture  `gorm:"constraint:OnDelete:CASCADE"`
}
