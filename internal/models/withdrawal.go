package models

import (
	"time"

	"gorm.io/gorm"
)

type Withdrawal struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	Reference  string `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	AmountKobo int64  `gorm:"not null" json:"amount_kobo"`
	Status     string `gorm:"size:20;not null;index" json:"status"` // PENDING, PROCESSING, COMPLETED, FAILED

	// Bank details snapshotted at request time.
	BankCode      string `gorm:"size:10" json:"bank_code"`
	AccountNumber string `gorm:"size:20" json:"account_number"`
	AccountName   string `gorm:"size:100" json:"account_name"`

	// Gateway handles for the transfer leg.
	RecipientCode string `gorm:"size:64" json:"-"`
	TransferCode  string `gorm:"size:64" json:"-"`

	FailureReason string         `gorm:"size:255" json:"failure_reason,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
