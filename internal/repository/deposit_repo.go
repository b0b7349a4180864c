package repository

import (
	"time"

	"terravest/internal/domain"
	"terravest/internal/models"

	"gorm.io/gorm"
)

type DepositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) Create(d *models.Deposit) error {
	return r.db.Create(d).Error
}

func (r *DepositRepository) GetByReference(reference string) (*models.Deposit, error) {
	var d models.Deposit
	err := r.db.Where("reference = ?", reference).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// MarkCompletedTx transitions the deposit from PENDING to COMPLETED inside tx.
// Returns false when the deposit was not in PENDING, which means another
// delivery of the same callback already settled it.
func (r *DepositRepository) MarkCompletedTx(tx *gorm.DB, reference string) (bool, error) {
	now := time.Now()
	res := tx.Model(&models.Deposit{}).
		Where("reference = ? AND status = ?", reference, domain.DepositStatusPending).
		Updates(map[string]interface{}{"status": domain.DepositStatusCompleted, "completed_at": &now})
	return res.RowsAffected > 0, res.Error
}

// MarkFailed transitions the deposit from PENDING to FAILED.
func (r *DepositRepository) MarkFailed(reference string) (bool, error) {
	res := r.db.Model(&models.Deposit{}).
		Where("reference = ? AND status = ?", reference, domain.DepositStatusPending).
		Update("status", domain.DepositStatusFailed)
	return res.RowsAffected > 0, res.Error
}

func (r *DepositRepository) ListByUserID(userID uint) ([]models.Deposit, error) {
	var list []models.Deposit
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}
