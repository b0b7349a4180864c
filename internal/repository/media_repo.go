package repository

import (
	"terravest/internal/models"

	"gorm.io/gorm"
)

type GalleryRepository struct {
	db *gorm.DB
}

func NewGalleryRepository(db *gorm.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

func (r *GalleryRepository) Create(g *models.GalleryItem) error {
	return r.db.Create(g).Error
}

func (r *GalleryRepository) GetByID(id uint) (*models.GalleryItem, error) {
	var g models.GalleryItem
	err := r.db.First(&g, id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GalleryRepository) List(limit, offset int) ([]models.GalleryItem, int64, error) {
	var list []models.GalleryItem
	var total int64
	if err := r.db.Model(&models.GalleryItem{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *GalleryRepository) Delete(id uint) error {
	return r.db.Delete(&models.GalleryItem{}, id).Error
}

func (r *GalleryRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.GalleryItem{}).Count(&n).Error
	return n, err
}

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Create(f *models.ResourceFile) error {
	return r.db.Create(f).Error
}

func (r *ResourceRepository) GetByID(id uint) (*models.ResourceFile, error) {
	var f models.ResourceFile
	err := r.db.First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *ResourceRepository) List(limit, offset int) ([]models.ResourceFile, int64, error) {
	var list []models.ResourceFile
	var total int64
	if err := r.db.Model(&models.ResourceFile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *ResourceRepository) Delete(id uint) error {
	return r.db.Delete(&models.ResourceFile{}, id).Error
}

func (r *ResourceRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.ResourceFile{}).Count(&n).Error
	return n, err
}

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(p *models.Partner) error {
	return r.db.Create(p).Error
}

func (r *PartnerRepository) GetByID(id uint) (*models.Partner, error) {
	var p models.Partner
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartnerRepository) List(limit, offset int) ([]models.Partner, int64, error) {
	var list []models.Partner
	var total int64
	if err := r.db.Model(&models.Partner{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("name ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *PartnerRepository) Update(p *models.Partner) error {
	return r.db.Save(p).Error
}

func (r *PartnerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Partner{}, id).Error
}

func (r *PartnerRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Partner{}).Count(&n).Error
	return n, err
}
