package repository

import (
	"terravest/internal/models"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(e *models.Event) error {
	return r.db.Create(e).Error
}

func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var e models.Event
	err := r.db.First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) List(limit, offset int) ([]models.Event, int64, error) {
	var list []models.Event
	var total int64
	if err := r.db.Model(&models.Event{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("start_date DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *EventRepository) Search(query string) ([]models.Event, error) {
	var list []models.Event
	like := "%" + query + "%"
	err := r.db.Where("title LIKE ? OR description LIKE ? OR location LIKE ?", like, like, like).Find(&list).Error
	return list, err
}

func (r *EventRepository) Update(e *models.Event) error {
	return r.db.Save(e).Error
}

func (r *EventRepository) Delete(id uint) error {
	return r.db.Delete(&models.Event{}, id).Error
}

func (r *EventRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Event{}).Count(&n).Error
	return n, err
}
