package repository

import (
	"terravest/internal/models"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(p *models.Project) error {
	return r.db.Create(p).Error
}

func (r *ProjectRepository) GetByID(id uint) (*models.Project, error) {
	var p models.Project
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) GetPublishedByID(id uint) (*models.Project, error) {
	var p models.Project
	err := r.db.Where("id = ? AND is_published = ?", id, true).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(limit, offset int) ([]models.Project, int64, error) {
	var list []models.Project
	var total int64
	if err := r.db.Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *ProjectRepository) ListPublished(limit, offset int) ([]models.Project, int64, error) {
	q := r.db.Model(&models.Project{}).Where("is_published = ?", true)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Project
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *ProjectRepository) Search(query string) ([]models.Project, error) {
	var list []models.Project
	like := "%" + query + "%"
	err := r.db.Where("title LIKE ? OR summary LIKE ? OR body LIKE ?", like, like, like).Find(&list).Error
	return list, err
}

func (r *ProjectRepository) Update(p *models.Project) error {
	return r.db.Save(p).Error
}

func (r *ProjectRepository) Delete(id uint) error {
	return r.db.Delete(&models.Project{}, id).Error
}

func (r *ProjectRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Project{}).Count(&n).Error
	return n, err
}
