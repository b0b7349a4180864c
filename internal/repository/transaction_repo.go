package repository

import (
	"terravest/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository reads the append-only ledger. Writes happen only
// through LedgerRepository.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) ListByUserID(userID uint, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *TransactionRepository) SumByUserAndType(userID uint, txType string) (int64, error) {
	var sum int64
	err := r.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, txType).
		Select("COALESCE(SUM(amount_kobo), 0)").
		Scan(&sum).Error
	return sum, err
}
