package models

import (
	"time"

	"gorm.io/gorm"
)

type GalleryItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255" json:"title"`
	Caption   string         `gorm:"size:512" json:"caption"`
	ImageURL  string         `gorm:"size:512;not null" json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (GalleryItem) TableName() string {
	return "gallery_items"
}

type ResourceFile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"size:512" json:"description"`
	FileURL     string         `gorm:"size:512;not null" json:"file_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ResourceFile) TableName() string {
	return "resource_files"
}

type Partner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Website   string         `gorm:"size:255" json:"website"`
	LogoURL   string         `gorm:"size:512" json:"logo_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Partner) TableName() string {
	return "partners"
}
