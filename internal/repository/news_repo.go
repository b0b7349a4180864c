package repository

import (
	"time"

	"terravest/internal/models"

	"gorm.io/gorm"
)

type NewsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) Create(n *models.News) error {
	return r.db.Create(n).Error
}

func (r *NewsRepository) GetByID(id uint) (*models.News, error) {
	var n models.News
	err := r.db.First(&n, id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NewsRepository) GetPublishedByID(id uint) (*models.News, error) {
	var n models.News
	err := r.db.Where("id = ? AND is_published = ? AND published_at <= ?", id, true, time.Now()).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NewsRepository) List(limit, offset int) ([]models.News, int64, error) {
	var list []models.News
	var total int64
	if err := r.db.Model(&models.News{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("published_at DESC, created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *NewsRepository) ListPublished(limit, offset int) ([]models.News, int64, error) {
	q := r.db.Model(&models.News{}).Where("is_published = ? AND published_at <= ?", true, time.Now())
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.News
	err := q.Order("published_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *NewsRepository) Search(query string) ([]models.News, error) {
	var list []models.News
	like := "%" + query + "%"
	err := r.db.Where("title LIKE ? OR content LIKE ?", like, like).Find(&list).Error
	return list, err
}

func (r *NewsRepository) Update(n *models.News) error {
	return r.db.Save(n).Error
}

func (r *NewsRepository) Delete(id uint) error {
	return r.db.Delete(&models.News{}, id).Error
}

func (r *NewsRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.News{}).Count(&n).Error
	return n, err
}
