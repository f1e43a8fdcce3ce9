package blog

import "time"

type Blog struct {
	ID          int64     `gorm:"primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Slug        string    `gorm:"column:slug;uniqueIndex;not null"`
	Summary     string    `gorm:"column:summary;not null"`
	Content     string    `gorm:"column:content;not null"`
	CategoryID  int64     `gorm:"column:category_id;not null;index"`
	AuthorID    int64     `gorm:"column:author_id;not null;index"`
	Image       string    `gorm:"column:image"`
	IsPublished bool      `gorm:"column:is_published;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Blog) TableName() string {
	return "blogs"
}
