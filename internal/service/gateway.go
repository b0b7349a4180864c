package service

import (
	"context"

	"terravest/pkg/paystack"
)

// Gateway is the slice of the payment provider the wallet services need.
// *paystack.Client satisfies it; tests substitute a fake.
type Gateway interface {
	InitializeTransaction(ctx context.Context, email string, amountKobo int64, reference, callbackURL string) (*paystack.InitializeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResponse, error)
	CreateTransferRecipient(ctx context.Context, name, accountNumber, bankCode string) (*paystack.Recipient, error)
	InitiateTransfer(ctx context.Context, recipientCode string, amountKobo int64, reference, reason string) (*paystack.Transfer, error)
	VerifyTransfer(ctx context.Context, reference string) (*paystack.Transfer, error)
	ListBanks(ctx context.Context) ([]paystack.Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.ResolvedAccount, error)
}
