package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"terravest/internal/domain"
	"terravest/internal/models"
	"terravest/internal/repository"
	"terravest/pkg/paystack"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newWithdrawalService(t *testing.T, db *gorm.DB, gw Gateway) *WithdrawalService {
	t.Helper()
	return NewWithdrawalService(
		db, gw,
		repository.NewWithdrawalRepository(db),
		repository.NewLedgerRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db)),
		testConfig(),
	)
}

func seedPayoutMember(t *testing.T, db *gorm.DB, balanceKobo int64, pin string) *models.User {
	t.Helper()
	u := seedMember(t, db, balanceKobo)
	if pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
		require.NoError(t, err)
		u.TransactionPinHash = string(hash)
	}
	u.BankName = "Test Bank"
	u.BankCode = "058"
	u.AccountNumber = "0123456789"
	u.AccountName = "ADA OBI"
	require.NoError(t, db.Save(u).Error)
	return u
}

func TestWithdrawalRequiresPin(t *testing.T) {
	db := testDB(t)
	svc := newWithdrawalService(t, db, &fakeGateway{})
	u := seedPayoutMember(t, db, 10000, "")

	_, err := svc.Request(context.Background(), u, 50, "1234")
	require.ErrorIs(t, err, ErrPinNotSet)

	u2 := seedPayoutMember(t, db, 10000, "1234")
	u2.Email = "obi@example.com"
	require.NoError(t, db.Save(u2).Error)
	_, err = svc.Request(context.Background(), u2, 50, "9999")
	require.ErrorIs(t, err, ErrInvalidPin)
}

func TestWithdrawalInsufficientBalanceHasNoSideEffect(t *testing.T) {
	db := testDB(t)
	svc := newWithdrawalService(t, db, &fakeGateway{})
	u := seedPayoutMember(t, db, 3000, "1234")

	_, err := svc.Request(context.Background(), u, 50, "1234") // 5000 kobo > 3000
	require.ErrorIs(t, err, repository.ErrInsufficientFunds)

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	require.Equal(t, int64(3000), got.BalanceKobo)

	var rows int64
	require.NoError(t, db.Model(&models.Withdrawal{}).Where("user_id = ?", u.ID).Count(&rows).Error)
	require.Zero(t, rows)
}

func TestWithdrawalDebitsBeforeDisbursement(t *testing.T) {
	db := testDB(t)
	var balanceAtTransfer int64 = -1
	gw := &fakeGateway{
		initTransfer: func(ctx context.Context, recipientCode string, amountKobo int64, reference, reason string) (*paystack.Transfer, error) {
			var u models.User
			require.NoError(t, db.First(&u).Error)
			balanceAtTransfer = u.BalanceKobo
			return &paystack.Transfer{TransferCode: "TRF_1", Status: "pending", Reference: reference}, nil
		},
	}
	svc := newWithdrawalService(t, db, gw)
	u := seedPayoutMember(t, db, 10000, "1234")

	w, err := svc.Request(context.Background(), u, 50, "1234")
	require.NoError(t, err)
	// The gateway accepted the transfer, so the withdrawal is in flight.
	require.Equal(t, domain.WithdrawalStatusProcessing, w.Status)
	require.Equal(t, int64(5000), balanceAtTransfer) // already debited when the gateway was called

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	require.Equal(t, int64(5000), got.BalanceKobo)
}

func TestWithdrawalSyncRejectionReversesExactly(t *testing.T) {
	db := testDB(t)
	gw := &fakeGateway{
		initTransfer: func(ctx context.Context, recipientCode string, amountKobo int64, reference, reason string) (*paystack.Transfer, error) {
			return nil, errors.New("transfer rejected: OTP required")
		},
	}
	svc := newWithdrawalService(t, db, gw)
	u := seedPayoutMember(t, db, 10000, "1234")

	_, err := svc.Request(context.Background(), u, 50, "1234")
	require.Error(t, err)

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	require.Equal(t, int64(10000), got.BalanceKobo) // back to the starting balance exactly

	var w models.Withdrawal
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&w).Error)
	require.Equal(t, domain.WithdrawalStatusFailed, w.Status)

	// One debit, one reversal.
	var entries []models.Transaction
	require.NoError(t, db.Where("user_id = ?", u.ID).Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	require.Equal(t, int64(-5000), entries[0].AmountKobo)
	require.Equal(t, domain.TxTypeWithdrawalReversal, entries[1].Type)
	require.Equal(t, int64(5000), entries[1].AmountKobo)
}

func TestWithdrawalGatewayUnavailableStaysPending(t *testing.T) {
	db := testDB(t)
	gw := &fakeGateway{
		initTransfer: func(ctx context.Context, recipientCode string, amountKobo int64, reference, reason string) (*paystack.Transfer, error) {
			return nil, paystack.ErrUnavailable
		},
	}
	svc := newWithdrawalService(t, db, gw)
	u := seedPayoutMember(t, db, 10000, "1234")

	w, err := svc.Request(context.Background(), u, 50, "1234")
	require.NoError(t, err)

	// The transfer may be in flight: the debit stands and the sweep owns it.
	var got models.Withdrawal
	require.NoError(t, db.Where("reference = ?", w.Reference).First(&got).Error)
	require.Equal(t, domain.WithdrawalStatusPending, got.Status)

	var user models.User
	require.NoError(t, db.First(&user, u.ID).Error)
	require.Equal(t, int64(5000), user.BalanceKobo)
}

func TestTransferWebhookCompletesProcessingWithdrawal(t *testing.T) {
	db := testDB(t)
	svc := newWithdrawalService(t, db, &fakeGateway{})
	u := seedPayoutMember(t, db, 10000, "1234")

	w, err := svc.Request(context.Background(), u, 50, "1234")
	require.NoError(t, err)
	require.Equal(t, domain.WithdrawalStatusProcessing, w.Status)

	err = svc.HandleTransferWebhook(context.Background(), "transfer.success", paystack.TransferEventData{Reference: w.Reference})
	require.NoError(t, err)

	var got models.Withdrawal
	require.NoError(t, db.Where("reference = ?", w.Reference).First(&got).Error)
	require.Equal(t, domain.WithdrawalStatusCompleted, got.Status)

	// A failed event after completion is a no-op: no refund of paid-out money.
	err = svc.HandleTransferWebhook(context.Background(), "transfer.failed", paystack.TransferEventData{Reference: w.Reference})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, u.ID).Error)
	require.Equal(t, int64(5000), user.BalanceKobo)
}

func TestTransferWebhookFailureRefunds(t *testing.T) {
	db := testDB(t)
	svc := newWithdrawalService(t, db, &fakeGateway{})
	u := seedPayoutMember(t, db, 10000, "1234")

	w, err := svc.Request(context.Background(), u, 50, "1234")
	require.NoError(t, err)

	err = svc.HandleTransferWebhook(context.Background(), "transfer.failed", paystack.TransferEventData{Reference: w.Reference})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, u.ID).Error)
	require.Equal(t, int64(10000), user.BalanceKobo)

	var got models.Withdrawal
	require.NoError(t, db.Where("reference = ?", w.Reference).First(&got).Error)
	require.Equal(t, domain.WithdrawalStatusFailed, got.Status)
}

func TestTransferWebhookUnknownReferenceIgnored(t *testing.T) {
	db := testDB(t)
	svc := newWithdrawalService(t, db, &fakeGateway{})

	err := svc.HandleTransferWebhook(context.Background(), "transfer.success", paystack.TransferEventData{Reference: "WITHDRAW-forged"})
	require.NoError(t, err)
}

func TestSweepConvergesStaleWithdrawals(t *testing.T) {
	db := testDB(t)
	gw := &fakeGateway{}
	svc := newWithdrawalService(t, db, gw)
	u := seedPayoutMember(t, db, 20000, "1234")

	wOK, err := svc.Request(context.Background(), u, 50, "1234")
	require.NoError(t, err)
	wBad, err := svc.Request(context.Background(), u, 30, "1234")
	require.NoError(t, err)

	// Age both past the staleness threshold.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Withdrawal{}).Where("1 = 1").UpdateColumn("updated_at", past).Error)

	gw.verifyTransfer = func(ctx context.Context, reference string) (*paystack.Transfer, error) {
		if reference == wOK.Reference {
			return &paystack.Transfer{Status: "success", Reference: reference}, nil
		}
		return &paystack.Transfer{Status: "failed", Reference: reference}, nil
	}

	result, err := svc.RetryPending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Checked)
	require.Equal(t, 1, result.Completed)
	require.Equal(t, 1, result.Reversed)

	var got models.Withdrawal
	require.NoError(t, db.Where("reference = ?", wOK.Reference).First(&got).Error)
	require.Equal(t, domain.WithdrawalStatusCompleted, got.Status)
	got = models.Withdrawal{} // fresh dest: a populated primary key would be added to the WHERE clause
	require.NoError(t, db.Where("reference = ?", wBad.Reference).First(&got).Error)
	require.Equal(t, domain.WithdrawalStatusFailed, got.Status)

	// 20000 - 5000 (paid out) - 3000 + 3000 (reversed) = 15000
	var user models.User
	require.NoError(t, db.First(&user, u.ID).Error)
	require.Equal(t, int64(15000), user.BalanceKobo)

	// Nothing left stale: a second pass finds no work.
	result, err = svc.RetryPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, result.Checked)
}

func TestSweepReversesTransferUnknownToGateway(t *testing.T) {
	db := testDB(t)
	gw := &fakeGateway{
		initTransfer: func(ctx context.Context, recipientCode string, amountKobo int64, reference, reason string) (*paystack.Transfer, error) {
			return nil, paystack.ErrUnavailable // the initiation call died in flight
		},
	}
	svc := newWithdrawalService(t, db, gw)
	u := seedPayoutMember(t, db, 10000, "1234")

	w, err := svc.Request(context.Background(), u, 50, "1234")
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Withdrawal{}).Where("1 = 1").UpdateColumn("updated_at", past).Error)

	// The gateway has no record of the transfer: it was never created, so
	// the money must come back rather than wait forever as in flight.
	gw.verifyTransfer = func(ctx context.Context, reference string) (*paystack.Transfer, error) {
		return nil, fmt.Errorf("%w: Transfer not found", paystack.ErrNotFound)
	}

	result, err := svc.RetryPending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Checked)
	require.Equal(t, 1, result.Reversed)
	require.Zero(t, result.InFlight)

	var got models.Withdrawal
	require.NoError(t, db.Where("reference = ?", w.Reference).First(&got).Error)
	require.Equal(t, domain.WithdrawalStatusFailed, got.Status)

	var user models.User
	require.NoError(t, db.First(&user, u.ID).Error)
	require.Equal(t, int64(10000), user.BalanceKobo)

	// Converged: nothing for a second pass to do.
	result, err = svc.RetryPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, result.Checked)
}

func TestReversalNotReportedWhenSettledElsewhere(t *testing.T) {
	db := testDB(t)
	svc := newWithdrawalService(t, db, &fakeGateway{})
	u := seedPayoutMember(t, db, 10000, "1234")

	w, err := svc.Request(context.Background(), u, 50, "1234")
	require.NoError(t, err)

	// First reversal attempt aborts after the status flip; while it backs
	// off, a webhook settles the withdrawal as paid out. The reversal must
	// then report false: nothing was credited back.
	var failedOnce bool
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("reversal_write_failure", func(tx *gorm.DB) {
		entry, ok := tx.Statement.Dest.(*models.Transaction)
		if !ok || entry.Type != domain.TxTypeWithdrawalReversal || failedOnce {
			return
		}
		failedOnce = true
		tx.AddError(errors.New("simulated write failure"))
		time.AfterFunc(20*time.Millisecond, func() {
			db.Model(&models.Withdrawal{}).
				Where("reference = ?", w.Reference).
				UpdateColumn("status", domain.WithdrawalStatusCompleted)
		})
	}))

	require.False(t, svc.reverse(w, "gateway reported transfer.failed"))

	var got models.Withdrawal
	require.NoError(t, db.Where("reference = ?", w.Reference).First(&got).Error)
	require.Equal(t, domain.WithdrawalStatusCompleted, got.Status)

	// Paid out, not refunded: the debit stands and no reversal row exists.
	var user models.User
	require.NoError(t, db.First(&user, u.ID).Error)
	require.Equal(t, int64(5000), user.BalanceKobo)

	var reversals int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("type = ?", domain.TxTypeWithdrawalReversal).Count(&reversals).Error)
	require.Zero(t, reversals)
}
