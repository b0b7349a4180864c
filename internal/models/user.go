package models

import (
	"time"

	"terravest/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // ADMIN | MEMBER

	// BalanceKobo is mutated only through repository.LedgerRepository.
	BalanceKobo int64 `gorm:"not null;default:0" json:"balance_kobo"`

	EmailVerifiedAt        *time.Time `json:"email_verified_at"`
	VerificationCode       string     `gorm:"size:6" json:"-"`
	VerificationCodeExpiry *time.Time `json:"-"`

	PasswordResetCode       string     `gorm:"size:6" json:"-"`
	PasswordResetCodeExpiry *time.Time `json:"-"`

	TransactionPinHash string     `gorm:"size:255" json:"-"`
	PinResetCode       string     `gorm:"size:6" json:"-"`
	PinResetCodeExpiry *time.Time `json:"-"`

	// Bank binding for withdrawals; AccountName is resolved server-side.
	BankName      string `gorm:"size:100" json:"bank_name"`
	BankCode      string `gorm:"size:10" json:"bank_code"`
	AccountNumber string `gorm:"size:20" json:"account_number"`
	AccountName   string `gorm:"size:100" json:"account_name"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool  { return u.Role == domain.RoleAdmin }
func (u *User) IsMember() bool { return u.Role == domain.RoleMember }

func (u *User) HasVerifiedEmail() bool { return u.EmailVerifiedAt != nil }

func (u *User) HasBankAccount() bool {
	return u.AccountNumber != "" && u.BankCode != "" && u.AccountName != ""
}
