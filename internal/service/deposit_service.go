package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"terravest/config"
	"terravest/internal/domain"
	"terravest/internal/models"
	"terravest/internal/repository"
	"terravest/pkg/signer"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount     = errors.New("amount must be at least 1")
	ErrReferenceNotFound = errors.New("reference not found")
)

// errAlreadySettled aborts the settlement transaction when another delivery
// of the same callback won the status transition first.
var errAlreadySettled = errors.New("deposit already settled")

// DepositService drives the deposit state machine:
// initiated -> PENDING -> COMPLETED | FAILED. The only trigger out of
// PENDING is a server-to-server verification result from the gateway.
type DepositService struct {
	db       *gorm.DB
	gateway  Gateway
	deposits *repository.DepositRepository
	ledger   *repository.LedgerRepository
	notifier *NotificationService
	signer   *signer.Signer
	cfg      *config.Config
}

func NewDepositService(
	db *gorm.DB,
	gateway Gateway,
	deposits *repository.DepositRepository,
	ledger *repository.LedgerRepository,
	notifier *NotificationService,
	cfg *config.Config,
) *DepositService {
	return &DepositService{
		db:       db,
		gateway:  gateway,
		deposits: deposits,
		ledger:   ledger,
		notifier: notifier,
		signer:   signer.New(cfg.Wallet.CallbackSecret),
		cfg:      cfg,
	}
}

type DepositIntent struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"payment_url"`
}

// Initiate starts a deposit: one gateway call, one PENDING row, and a signed
// time-limited callback URL the gateway redirects the customer back through.
func (s *DepositService) Initiate(ctx context.Context, user *models.User, amountNaira int64) (*DepositIntent, error) {
	if amountNaira < 1 {
		return nil, ErrInvalidAmount
	}
	amountKobo := amountNaira * 100
	reference := "DEPOSIT-" + uuid.New().String()
	callbackURL := s.signer.SignedURL(s.cfg.App.BaseURL, "/api/v1/deposit/callback", reference, s.cfg.Wallet.CallbackExpiry)

	init, err := s.gateway.InitializeTransaction(ctx, user.Email, amountKobo, reference, callbackURL)
	if err != nil {
		log.Printf("[Deposit] initialize failed user=%d amount=%d: %v", user.ID, amountKobo, err)
		return nil, fmt.Errorf("initialize deposit: %w", err)
	}
	d := &models.Deposit{
		UserID:     user.ID,
		Reference:  reference,
		AmountKobo: amountKobo,
		Status:     domain.DepositStatusPending,
	}
	if err := s.deposits.Create(d); err != nil {
		return nil, fmt.Errorf("record deposit: %w", err)
	}
	log.Printf("[Deposit] initiated reference=%s user=%d amount=%d", reference, user.ID, amountKobo)
	return &DepositIntent{Reference: reference, AuthorizationURL: init.AuthorizationURL}, nil
}

// VerifyCallbackURL checks the signature and expiry minted by Initiate.
func (s *DepositService) VerifyCallbackURL(reference, expires, signature string) bool {
	return s.signer.Verify(reference, expires, signature)
}

type CallbackResult struct {
	Status     string
	AmountKobo int64
}

// HandleCallback settles a deposit after the customer is redirected back.
// The outcome is always re-derived from VerifyTransaction; the callback's
// own parameters are only used to locate the row. Replays after a terminal
// state return the recorded outcome without touching the ledger.
func (s *DepositService) HandleCallback(ctx context.Context, reference string) (*CallbackResult, error) {
	d, err := s.deposits.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Deposit] callback for unknown reference=%s", reference)
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	if d.Status != domain.DepositStatusPending {
		log.Printf("[Deposit] duplicate callback reference=%s status=%s", reference, d.Status)
		return &CallbackResult{Status: d.Status, AmountKobo: d.AmountKobo}, nil
	}

	v, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		// Unknown outcome: leave the deposit PENDING so a later callback
		// or manual verification can settle it.
		log.Printf("[Deposit] verify failed reference=%s: %v", reference, err)
		return nil, fmt.Errorf("verify deposit: %w", err)
	}

	if v.Status != "success" || v.Amount != d.AmountKobo {
		if v.Amount != d.AmountKobo && v.Status == "success" {
			log.Printf("[Deposit] amount mismatch reference=%s expected=%d got=%d", reference, d.AmountKobo, v.Amount)
		}
		if _, err := s.deposits.MarkFailed(reference); err != nil {
			return nil, err
		}
		s.notifier.Notify(d.UserID, domain.NotifTypeDepositFailed, "Deposit failed",
			fmt.Sprintf("Your deposit of %s could not be confirmed.", naira(d.AmountKobo)),
			map[string]interface{}{"reference": reference})
		log.Printf("[Deposit] failed reference=%s gateway_status=%s", reference, v.Status)
		return &CallbackResult{Status: domain.DepositStatusFailed, AmountKobo: d.AmountKobo}, nil
	}

	// Credit, status transition and notification commit atomically; a crash
	// between them cannot leave the balance and the deposit row disagreeing.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.deposits.MarkCompletedTx(tx, reference)
		if err != nil {
			return err
		}
		if !ok {
			return errAlreadySettled
		}
		if err := s.ledger.CreditTx(tx, d.UserID, d.AmountKobo, &models.Transaction{
			Type:      domain.TxTypeDeposit,
			Reference: reference,
			Narration: "Wallet deposit",
		}); err != nil {
			return err
		}
		return s.notifier.NotifyTx(tx, d.UserID, domain.NotifTypeDepositConfirmed, "Deposit confirmed",
			fmt.Sprintf("Your deposit of %s has been confirmed.", naira(d.AmountKobo)),
			map[string]interface{}{"reference": reference})
	})
	if errors.Is(err, errAlreadySettled) {
		settled, gerr := s.deposits.GetByReference(reference)
		if gerr != nil {
			return nil, gerr
		}
		return &CallbackResult{Status: settled.Status, AmountKobo: settled.AmountKobo}, nil
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Deposit] completed reference=%s user=%d amount=%d", reference, d.UserID, d.AmountKobo)
	return &CallbackResult{Status: domain.DepositStatusCompleted, AmountKobo: d.AmountKobo}, nil
}

func naira(amountKobo int64) string {
	return fmt.Sprintf("NGN %d.%02d", amountKobo/100, amountKobo%100)
}
