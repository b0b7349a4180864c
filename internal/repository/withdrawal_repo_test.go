package repository

import (
	"testing"
	"time"

	"terravest/internal/domain"
	"terravest/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedWithdrawal(t *testing.T, db *gorm.DB, userID uint, reference, status string, amountKobo int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Withdrawal{
		UserID:     userID,
		Reference:  reference,
		AmountKobo: amountKobo,
		Status:     status,
	}).Error)
}

func TestMarkProcessingIsSingleShot(t *testing.T) {
	db := testDB(t)
	repo := NewWithdrawalRepository(db)
	u := seedUser(t, db, 0)
	seedWithdrawal(t, db, u.ID, "WITHDRAW-1", domain.WithdrawalStatusPending, 5000)

	ok, err := repo.MarkProcessing("WITHDRAW-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkProcessing("WITHDRAW-1")
	require.NoError(t, err)
	require.False(t, ok)

	// PROCESSING is still open: completion and failure both accept it.
	ok, err = repo.MarkCompleted("WITHDRAW-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkFailedTx(db, "WITHDRAW-1", "late event")
	require.NoError(t, err)
	require.False(t, ok) // already terminal
}

func TestListStaleOpenCoversBothOpenStates(t *testing.T) {
	db := testDB(t)
	repo := NewWithdrawalRepository(db)
	u := seedUser(t, db, 0)
	seedWithdrawal(t, db, u.ID, "WITHDRAW-pending", domain.WithdrawalStatusPending, 1000)
	seedWithdrawal(t, db, u.ID, "WITHDRAW-processing", domain.WithdrawalStatusProcessing, 2000)
	seedWithdrawal(t, db, u.ID, "WITHDRAW-done", domain.WithdrawalStatusCompleted, 3000)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Withdrawal{}).Where("1 = 1").UpdateColumn("updated_at", past).Error)

	stale, err := repo.ListStaleOpen(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 2)

	n, err := repo.CountOpenByUserID(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestSumCompletedExcludesReversedAndOpen(t *testing.T) {
	db := testDB(t)
	repo := NewWithdrawalRepository(db)
	u := seedUser(t, db, 0)
	seedWithdrawal(t, db, u.ID, "WITHDRAW-paid-1", domain.WithdrawalStatusCompleted, 5000)
	seedWithdrawal(t, db, u.ID, "WITHDRAW-paid-2", domain.WithdrawalStatusCompleted, 2000)
	seedWithdrawal(t, db, u.ID, "WITHDRAW-reversed", domain.WithdrawalStatusFailed, 4000)
	seedWithdrawal(t, db, u.ID, "WITHDRAW-open", domain.WithdrawalStatusProcessing, 1000)

	sum, err := repo.SumCompletedByUserID(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7000), sum) // only money actually paid out
}
