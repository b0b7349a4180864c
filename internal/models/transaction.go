package models

import (
	"time"
)

// Transaction is the append-only ledger entry behind every balance change.
// Rows are written inside the same database transaction as the balance
// mutation and are never updated or deleted afterwards.
type Transaction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Type       string    `gorm:"size:30;not null;index" json:"type"` // DEPOSIT, WITHDRAWAL, WITHDRAWAL_REVERSAL
	AmountKobo int64     `gorm:"not null" json:"amount_kobo"`        // positive = credit, negative = debit
	Reference  string    `gorm:"size:64;index" json:"reference"`
	Narration  string    `gorm:"size:255" json:"narration"`
	CreatedAt  time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
