package repository

import (
	"errors"

	"terravest/internal/models"

	"gorm.io/gorm"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// LedgerRepository is the only place user balances change. Every successful
// credit or debit appends one immutable Transaction row in the same database
// transaction, so balance and ledger can never drift apart.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Credit adds amountKobo to the user's balance and appends entry.
func (r *LedgerRepository) Credit(userID uint, amountKobo int64, entry *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return r.CreditTx(tx, userID, amountKobo, entry)
	})
}

// CreditTx is Credit inside an existing transaction, for callers that need
// the balance change and a status transition to commit or abort together.
func (r *LedgerRepository) CreditTx(tx *gorm.DB, userID uint, amountKobo int64, entry *models.Transaction) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance_kobo", gorm.Expr("balance_kobo + ?", amountKobo))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	entry.UserID = userID
	entry.AmountKobo = amountKobo
	return tx.Create(entry).Error
}

// Debit subtracts amountKobo from the user's balance and appends entry.
// Returns ErrInsufficientFunds, with no side effect, when the balance is
// too low. The balance guard lives in the UPDATE's WHERE clause, so two
// concurrent debits can never both pass the check.
func (r *LedgerRepository) Debit(userID uint, amountKobo int64, entry *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return r.DebitTx(tx, userID, amountKobo, entry)
	})
}

// DebitTx is Debit inside an existing transaction.
func (r *LedgerRepository) DebitTx(tx *gorm.DB, userID uint, amountKobo int64, entry *models.Transaction) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND balance_kobo >= ?", userID, amountKobo).
		Update("balance_kobo", gorm.Expr("balance_kobo - ?", amountKobo))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the user does not exist or the balance is short; both
		// surface to the caller as a declined debit.
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientFunds
	}
	entry.UserID = userID
	entry.AmountKobo = -amountKobo
	return tx.Create(entry).Error
}

// SumEntries returns the sum of all ledger entries for the user. Under the
// ledger invariant this equals the user's balance at all times.
func (r *LedgerRepository) SumEntries(userID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount_kobo), 0)").
		Scan(&sum).Error
	return sum, err
}
