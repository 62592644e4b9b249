package db

import "time"

// Picture 定义页面画廊中的图片，随所属页面一起删除。
type Picture struct {
	ID        uint   `gorm:"primarykey"`
	PageID    uint   `gorm:"not null;index"`
	Filename  string `gorm:"not null"`
	Caption   *string
	Sequence  int `gorm:"not null;default:0"`
	CreatedAt time.Time
}
