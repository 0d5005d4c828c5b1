package models

import (
	"time"

	"gorm.io/gorm"
)

type MediaAsset struct {
	ID           uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	FileName     string         `json:"file_name" gorm:"not null"`
	OriginalName string         `json:"original_name"`
	FileURL      string         `json:"file_url" gorm:"not null"`
	ThumbnailURL string         `json:"thumbnail_url"`
	ContentType  string         `json:"content_type"`
	Size         int64          `json:"size"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
