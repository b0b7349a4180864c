package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"terravest/config"
	"terravest/internal/domain"
	"terravest/internal/models"
	"terravest/internal/repository"
	"terravest/pkg/paystack"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPinNotSet     = errors.New("transaction PIN not set")
	ErrInvalidPin    = errors.New("incorrect transaction PIN")
	ErrNoBankAccount = errors.New("no bank account on file")
)

// WithdrawalService drives the withdrawal state machine:
// requested -> debited(PENDING) -> PROCESSING -> COMPLETED | FAILED(reversed).
// The debit always lands before the gateway is asked to move money; the
// only corrective action after that point is the compensating credit-back.
type WithdrawalService struct {
	db          *gorm.DB
	gateway     Gateway
	withdrawals *repository.WithdrawalRepository
	ledger      *repository.LedgerRepository
	notifier    *NotificationService
	cfg         *config.Config
}

func NewWithdrawalService(
	db *gorm.DB,
	gateway Gateway,
	withdrawals *repository.WithdrawalRepository,
	ledger *repository.LedgerRepository,
	notifier *NotificationService,
	cfg *config.Config,
) *WithdrawalService {
	return &WithdrawalService{
		db:          db,
		gateway:     gateway,
		withdrawals: withdrawals,
		ledger:      ledger,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// Request validates the PIN, debits the balance and asks the gateway to
// disburse. A synchronous gateway rejection reverses the debit before
// returning; an unreachable gateway leaves the withdrawal PENDING for the
// retry sweep, since the transfer may still have gone through.
func (s *WithdrawalService) Request(ctx context.Context, user *models.User, amountNaira int64, pin string) (*models.Withdrawal, error) {
	if amountNaira < 1 {
		return nil, ErrInvalidAmount
	}
	if user.TransactionPinHash == "" {
		return nil, ErrPinNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.TransactionPinHash), []byte(pin)); err != nil {
		return nil, ErrInvalidPin
	}
	if !user.HasBankAccount() {
		return nil, ErrNoBankAccount
	}

	amountKobo := amountNaira * 100
	reference := "WITHDRAW-" + uuid.New().String()
	w := &models.Withdrawal{
		UserID:        user.ID,
		Reference:     reference,
		AmountKobo:    amountKobo,
		Status:        domain.WithdrawalStatusPending,
		BankCode:      user.BankCode,
		AccountNumber: user.AccountNumber,
		AccountName:   user.AccountName,
	}

	// Debit and withdrawal row in one transaction: an insufficient balance
	// declines the request with no row created and no side effect.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.DebitTx(tx, user.ID, amountKobo, &models.Transaction{
			Type:      domain.TxTypeWithdrawal,
			Reference: reference,
			Narration: "Wallet withdrawal",
		}); err != nil {
			return err
		}
		return s.withdrawals.CreateTx(tx, w)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Withdrawal] debited reference=%s user=%d amount=%d", reference, user.ID, amountKobo)

	recipient, err := s.gateway.CreateTransferRecipient(ctx, user.AccountName, user.AccountNumber, user.BankCode)
	if err != nil {
		if errors.Is(err, paystack.ErrUnavailable) {
			log.Printf("[Withdrawal] recipient creation unknown reference=%s: %v", reference, err)
			return w, nil // sweep resolves
		}
		s.reverse(w, "recipient creation rejected")
		return nil, fmt.Errorf("create transfer recipient: %w", err)
	}
	w.RecipientCode = recipient.RecipientCode
	if err := s.withdrawals.Update(w); err != nil {
		log.Printf("[Withdrawal] persist recipient code failed reference=%s: %v", reference, err)
	}

	transfer, err := s.gateway.InitiateTransfer(ctx, recipient.RecipientCode, amountKobo, reference, "Wallet withdrawal")
	if err != nil {
		if errors.Is(err, paystack.ErrUnavailable) {
			// Unknown, not failed: the transfer may be in flight at the
			// gateway. The sweep owns resolution from here.
			log.Printf("[Withdrawal] transfer initiation unknown reference=%s: %v", reference, err)
			return w, nil
		}
		s.reverse(w, "disbursement rejected by gateway")
		return nil, fmt.Errorf("initiate transfer: %w", err)
	}
	w.TransferCode = transfer.TransferCode
	if err := s.withdrawals.Update(w); err != nil {
		log.Printf("[Withdrawal] persist transfer code failed reference=%s: %v", reference, err)
	}

	switch transfer.Status {
	case "failed", "reversed":
		s.reverse(w, "transfer "+transfer.Status)
		return nil, fmt.Errorf("transfer %s", transfer.Status)
	case "success":
		if ok, err := s.withdrawals.MarkCompleted(reference); err == nil && ok {
			w.Status = domain.WithdrawalStatusCompleted
			s.notifyCompleted(w)
		}
	default:
		// Accepted by the gateway, disbursement in flight.
		if ok, err := s.withdrawals.MarkProcessing(reference); err == nil && ok {
			w.Status = domain.WithdrawalStatusProcessing
		}
	}
	return w, nil
}

// HandleTransferWebhook applies a signature-verified transfer event. The
// handler has already checked the signature; unknown references are logged
// and ignored so the response leaks nothing.
func (s *WithdrawalService) HandleTransferWebhook(ctx context.Context, eventType string, data paystack.TransferEventData) error {
	w, err := s.withdrawals.GetByReference(data.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Withdrawal] webhook for unknown reference=%s event=%s", data.Reference, eventType)
			return nil
		}
		return err
	}
	switch eventType {
	case "transfer.success":
		ok, err := s.withdrawals.MarkCompleted(w.Reference)
		if err != nil {
			return err
		}
		if ok {
			s.notifyCompleted(w)
			log.Printf("[Withdrawal] completed reference=%s via webhook", w.Reference)
		}
	case "transfer.failed", "transfer.reversed":
		s.reverse(w, "gateway reported "+eventType)
	default:
		log.Printf("[Withdrawal] ignoring webhook event=%s reference=%s", eventType, w.Reference)
	}
	return nil
}

// SweepResult reports what one retry pass did.
type SweepResult struct {
	Checked   int `json:"checked"`
	Completed int `json:"completed"`
	Reversed  int `json:"reversed"`
	InFlight  int `json:"in_flight"`
}

// RetryPending re-queries the gateway for withdrawals stuck in an open state
// past the staleness threshold. Webhooks are at-most-once; this sweep is the
// correctness backstop that converges every stuck withdrawal to a terminal
// state once the gateway reports a definitive status.
func (s *WithdrawalService) RetryPending(ctx context.Context) (*SweepResult, error) {
	cutoff := time.Now().Add(-s.cfg.Wallet.StaleAfter)
	stale, err := s.withdrawals.ListStaleOpen(cutoff)
	if err != nil {
		return nil, err
	}
	result := &SweepResult{Checked: len(stale)}
	for i := range stale {
		w := &stale[i]
		transfer, err := s.gateway.VerifyTransfer(ctx, w.Reference)
		if err != nil {
			// A 404 is definitive: the transfer was never created at the
			// gateway (the initiation call died in flight), so the debit
			// has nothing backing it and must come back.
			if errors.Is(err, paystack.ErrNotFound) {
				if s.reverse(w, "sweep: transfer not found at gateway") {
					result.Reversed++
				}
				continue
			}
			log.Printf("[Sweep] verify failed reference=%s: %v", w.Reference, err)
			result.InFlight++
			continue
		}
		switch transfer.Status {
		case "success":
			ok, err := s.withdrawals.MarkCompleted(w.Reference)
			if err != nil {
				log.Printf("[Sweep] complete failed reference=%s: %v", w.Reference, err)
				continue
			}
			if ok {
				s.notifyCompleted(w)
				result.Completed++
				log.Printf("[Sweep] completed reference=%s", w.Reference)
			}
		case "failed", "reversed":
			if s.reverse(w, "sweep: gateway reported "+transfer.Status) {
				result.Reversed++
			}
		default:
			result.InFlight++
		}
	}
	return result, nil
}

// reverse credits the debit back and marks the withdrawal FAILED. The status
// guard in MarkFailedTx makes the reversal single-shot under webhook/sweep
// races; the credit-back is retried until it lands because once the status
// row says FAILED the money must be back.
func (s *WithdrawalService) reverse(w *models.Withdrawal, reason string) bool {
	var transitioned bool
	op := func() error {
		transitioned = false // a prior aborted attempt must not leak through
		return s.db.Transaction(func(tx *gorm.DB) error {
			ok, err := s.withdrawals.MarkFailedTx(tx, w.Reference, reason)
			if err != nil {
				return err
			}
			if !ok {
				return nil // already terminal; nothing to reverse
			}
			transitioned = true
			if err := s.ledger.CreditTx(tx, w.UserID, w.AmountKobo, &models.Transaction{
				Type:      domain.TxTypeWithdrawalReversal,
				Reference: w.Reference,
				Narration: "Withdrawal reversed: " + reason,
			}); err != nil {
				return err
			}
			return s.notifier.NotifyTx(tx, w.UserID, domain.NotifTypeWithdrawalFailed, "Withdrawal failed",
				fmt.Sprintf("Your withdrawal of %s failed and the amount was returned to your balance.", naira(w.AmountKobo)),
				map[string]interface{}{"reference": w.Reference, "reason": reason})
		})
	}
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		if err = op(); err == nil {
			if transitioned {
				log.Printf("[Withdrawal] reversed reference=%s reason=%q", w.Reference, reason)
			}
			return transitioned
		}
		log.Printf("[Withdrawal] reversal attempt %d failed reference=%s: %v", attempt, w.Reference, err)
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	// The row is still PENDING, so the next sweep pass picks it up again.
	log.Printf("[Withdrawal] reversal exhausted retries reference=%s: %v", w.Reference, err)
	return false
}

func (s *WithdrawalService) notifyCompleted(w *models.Withdrawal) {
	s.notifier.Notify(w.UserID, domain.NotifTypeWithdrawalDone, "Withdrawal completed",
		fmt.Sprintf("Your withdrawal of %s has been paid out to %s.", naira(w.AmountKobo), w.AccountName),
		map[string]interface{}{"reference": w.Reference})
}
