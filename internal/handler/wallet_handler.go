package handler

import (
	"errors"
	"fmt"
	"net/http"

	"terravest/config"
	"terravest/internal/domain"
	"terravest/internal/middleware"
	"terravest/internal/repository"
	"terravest/internal/service"
	"terravest/pkg/paystack"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WalletHandler struct {
	deposits     *service.DepositService
	withdrawals  *service.WithdrawalService
	banks        *service.BankService
	auth         *service.AuthService
	users        *repository.UserRepository
	depositRepo  *repository.DepositRepository
	withdrawRepo *repository.WithdrawalRepository
	txRepo       *repository.TransactionRepository
	cfg          *config.Config
}

func NewWalletHandler(
	deposits *service.DepositService,
	withdrawals *service.WithdrawalService,
	banks *service.BankService,
	auth *service.AuthService,
	users *repository.UserRepository,
	depositRepo *repository.DepositRepository,
	withdrawRepo *repository.WithdrawalRepository,
	txRepo *repository.TransactionRepository,
	cfg *config.Config,
) *WalletHandler {
	return &WalletHandler{
		deposits:     deposits,
		withdrawals:  withdrawals,
		banks:        banks,
		auth:         auth,
		users:        users,
		depositRepo:  depositRepo,
		withdrawRepo: withdrawRepo,
		txRepo:       txRepo,
		cfg:          cfg,
	}
}

type amountRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"` // naira
}

func (h *WalletHandler) Deposit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	intent, err := h.deposits.Initiate(c.Request.Context(), u, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be at least 1"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not start deposit, try again shortly"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposit": intent})
}

// DepositCallback handles the browser redirect after payment. The URL was
// minted and signed by Initiate; an invalid or expired signature is rejected
// before any gateway call.
func (h *WalletHandler) DepositCallback(c *gin.Context) {
	reference := c.Query("reference")
	expires := c.Query("expires")
	signature := c.Query("signature")
	if !h.deposits.VerifyCallbackURL(reference, expires, signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired callback link"})
		return
	}
	result, err := h.deposits.HandleCallback(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, service.ErrReferenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown reference"})
			return
		}
		// Verification is unresolved; the deposit stays pending.
		c.Redirect(http.StatusFound, fmt.Sprintf("%s/wallet?deposit=pending&reference=%s", h.cfg.App.FrontendURL, reference))
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/wallet?deposit=%s&reference=%s", h.cfg.App.FrontendURL, result.Status, reference))
}

type withdrawRequest struct {
	Amount int64  `json:"amount" binding:"required,min=1"` // naira
	Pin    string `json:"pin" binding:"required,len=4"`
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	w, err := h.withdrawals.Request(c.Request.Context(), u, req.Amount, req.Pin)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"withdrawal": w})
	case errors.Is(err, service.ErrPinNotSet):
		c.JSON(http.StatusBadRequest, gin.H{"error": "set a transaction PIN first"})
	case errors.Is(err, service.ErrInvalidPin):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect transaction PIN"})
	case errors.Is(err, service.ErrNoBankAccount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bind a bank account first"})
	case errors.Is(err, repository.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
	case errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be at least 1"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "withdrawal could not be processed"})
	}
}

func (h *WalletHandler) GetWithdrawal(c *gin.Context) {
	w, err := h.withdrawRepo.GetByReference(c.Param("reference"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if w.UserID != middleware.GetUserID(c) {
		// Same response as not-found so references are not probeable.
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

func (h *WalletHandler) ListWithdrawals(c *gin.Context) {
	list, err := h.withdrawRepo.ListByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

func (h *WalletHandler) ListDeposits(c *gin.Context) {
	list, err := h.depositRepo.ListByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": list})
}

func (h *WalletHandler) Transactions(c *gin.Context) {
	limit, offset := paginate(c)
	list, err := h.txRepo.ListByUserID(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

func (h *WalletHandler) Stats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.users.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	deposited, err := h.txRepo.SumByUserAndType(userID, domain.TxTypeDeposit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	// Completed withdrawals only: reversed or in-flight ones are not payouts.
	withdrawn, err := h.withdrawRepo.SumCompletedByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	open, err := h.withdrawRepo.CountOpenByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_kobo":         u.BalanceKobo,
		"total_deposited_kobo": deposited,
		"total_withdrawn_kobo": withdrawn,
		"pending_withdrawals":  open,
	})
}

type setPinRequest struct {
	Pin string `json:"pin" binding:"required,len=4,numeric"`
}

func (h *WalletHandler) SetPin(c *gin.Context) {
	var req setPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.SetPin(middleware.GetUserID(c), req.Pin); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction PIN set"})
}

type updatePinRequest struct {
	CurrentPin string `json:"current_pin" binding:"required,len=4,numeric"`
	NewPin     string `json:"new_pin" binding:"required,len=4,numeric"`
}

func (h *WalletHandler) UpdatePin(c *gin.Context) {
	var req updatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.auth.UpdatePin(middleware.GetUserID(c), req.CurrentPin, req.NewPin)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "transaction PIN updated"})
	case errors.Is(err, service.ErrPinNotSet):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no PIN set yet"})
	case errors.Is(err, service.ErrInvalidPin):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect current PIN"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PIN update failed"})
	}
}

func (h *WalletHandler) RequestPinReset(c *gin.Context) {
	if err := h.auth.RequestPinReset(middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send reset code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "a reset code has been sent to your email"})
}

type resetPinRequest struct {
	Code   string `json:"code" binding:"required,len=6"`
	NewPin string `json:"new_pin" binding:"required,len=4,numeric"`
}

func (h *WalletHandler) ResetPin(c *gin.Context) {
	var req resetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.ResetPin(middleware.GetUserID(c), req.Code, req.NewPin); err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PIN reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction PIN reset"})
}

func (h *WalletHandler) ListBanks(c *gin.Context) {
	banks, err := h.banks.ListBanks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "bank list unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banks": banks})
}

type resolveAccountRequest struct {
	AccountNumber string `json:"account_number" binding:"required,len=10,numeric"`
	BankCode      string `json:"bank_code" binding:"required"`
}

func (h *WalletHandler) ResolveAccount(c *gin.Context) {
	var req resolveAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resolved, err := h.banks.ResolveAccount(c.Request.Context(), req.AccountNumber, req.BankCode)
	if err != nil {
		if errors.Is(err, paystack.ErrUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "account resolution unavailable"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not resolve account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": resolved})
}

func (h *WalletHandler) UpdateBankDetails(c *gin.Context) {
	var req resolveAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.banks.UpdateBankDetails(c.Request.Context(), middleware.GetUserID(c), req.AccountNumber, req.BankCode)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "bank account updated", "user": u})
	case errors.Is(err, service.ErrUnknownBank):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown bank code"})
	case errors.Is(err, paystack.ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "account resolution unavailable"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not verify account details"})
	}
}
