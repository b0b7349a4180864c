package service

import (
	"context"
	"errors"
	"fmt"

	"terravest/internal/models"
	"terravest/internal/repository"

	"terravest/pkg/paystack"
)

var ErrUnknownBank = errors.New("unknown bank code")

// BankService binds a verified bank account to a user. The account name is
// always resolved at the gateway, never taken from client input, so the
// withdrawal recipient matches what the bank has on file.
type BankService struct {
	users   *repository.UserRepository
	gateway Gateway
}

func NewBankService(users *repository.UserRepository, gateway Gateway) *BankService {
	return &BankService{users: users, gateway: gateway}
}

func (s *BankService) ListBanks(ctx context.Context) ([]paystack.Bank, error) {
	return s.gateway.ListBanks(ctx)
}

func (s *BankService) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.ResolvedAccount, error) {
	return s.gateway.ResolveAccount(ctx, accountNumber, bankCode)
}

// UpdateBankDetails resolves the account at the gateway and stores the
// binding, including the bank's display name from the bank list.
func (s *BankService) UpdateBankDetails(ctx context.Context, userID uint, accountNumber, bankCode string) (*models.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	banks, err := s.gateway.ListBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	var bankName string
	for _, b := range banks {
		if b.Code == bankCode {
			bankName = b.Name
			break
		}
	}
	if bankName == "" {
		return nil, ErrUnknownBank
	}

	resolved, err := s.gateway.ResolveAccount(ctx, accountNumber, bankCode)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	u.BankName = bankName
	u.BankCode = bankCode
	u.AccountNumber = accountNumber
	u.AccountName = resolved.AccountName
	if err := s.users.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}
