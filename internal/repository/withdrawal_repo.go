package repository

import (
	"time"

	"terravest/internal/domain"
	"terravest/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(w *models.Withdrawal) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) CreateTx(tx *gorm.DB, w *models.Withdrawal) error {
	return tx.Create(w).Error
}

func (r *WithdrawalRepository) GetByReference(reference string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.Where("reference = ?", reference).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) Update(w *models.Withdrawal) error {
	return r.db.Save(w).Error
}

// openStatuses are the non-terminal withdrawal states: PENDING before the
// gateway has accepted the transfer, PROCESSING after.
var openStatuses = []string{domain.WithdrawalStatusPending, domain.WithdrawalStatusProcessing}

// MarkProcessing transitions PENDING -> PROCESSING once the gateway has
// accepted the transfer for disbursement.
func (r *WithdrawalRepository) MarkProcessing(reference string) (bool, error) {
	res := r.db.Model(&models.Withdrawal{}).
		Where("reference = ? AND status = ?", reference, domain.WithdrawalStatusPending).
		Update("status", domain.WithdrawalStatusProcessing)
	return res.RowsAffected > 0, res.Error
}

// MarkCompleted transitions an open withdrawal to COMPLETED. Returns false
// when the row was already terminal; the webhook and the retry sweep both
// call this, and the status guard makes sure only the first one wins.
func (r *WithdrawalRepository) MarkCompleted(reference string) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.Withdrawal{}).
		Where("reference = ? AND status IN ?", reference, openStatuses).
		Updates(map[string]interface{}{"status": domain.WithdrawalStatusCompleted, "completed_at": &now})
	return res.RowsAffected > 0, res.Error
}

// MarkFailedTx transitions an open withdrawal to FAILED inside tx, same
// guard as MarkCompleted. The caller pairs it with the compensating credit.
func (r *WithdrawalRepository) MarkFailedTx(tx *gorm.DB, reference, reason string) (bool, error) {
	res := tx.Model(&models.Withdrawal{}).
		Where("reference = ? AND status IN ?", reference, openStatuses).
		Updates(map[string]interface{}{"status": domain.WithdrawalStatusFailed, "failure_reason": reason})
	return res.RowsAffected > 0, res.Error
}

// ListStaleOpen returns withdrawals stuck in an open state since before cutoff.
func (r *WithdrawalRepository) ListStaleOpen(cutoff time.Time) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := r.db.Where("status IN ? AND updated_at < ?", openStatuses, cutoff).
		Order("updated_at ASC").Find(&list).Error
	return list, err
}

func (r *WithdrawalRepository) ListByUserID(userID uint) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *WithdrawalRepository) CountOpenByUserID(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status IN ?", userID, openStatuses).Count(&n).Error
	return n, err
}

// SumCompletedByUserID totals money actually paid out; reversed or in-flight
// withdrawals do not count.
func (r *WithdrawalRepository) SumCompletedByUserID(userID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status = ?", userID, domain.WithdrawalStatusCompleted).
		Select("COALESCE(SUM(amount_kobo), 0)").
		Scan(&sum).Error
	return sum, err
}
