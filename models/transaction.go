package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus представляет состояние транзакции
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusVerified  TransactionStatus = "verified"
	StatusCompleted TransactionStatus = "completed"
	StatusRejected  TransactionStatus = "rejected"
)

type Transaction struct {
	ID               string            `gorm:"primaryKey;size:36"`
	SenderAccount    string            `gorm:"column:sender_account;not null;size:20"`
	SenderName       string            `gorm:"column:sender_name;not null;size:100"`
	SenderID         string            `gorm:"column:sender_id;not null;size:36;index"`
	RecipientAccount string            `gorm:"column:recipient_account;not null;size:34"`
	RecipientName    string            `gorm:"column:recipient_name;not null;size:100"`
	Amount           decimal.Decimal   `gorm:"column:amount;type:decimal(20,2);not null"`
	Currency         string            `gorm:"column:currency;not null;size:3"`
	SwiftCode        string            `gorm:"column:swift_code;not null;size:11"`
	Provider         string            `gorm:"column:provider;not null;size:10;default:SWIFT"`
	Status           TransactionStatus `gorm:"column:status;not null;size:16;index"`
	Verified         bool              `gorm:"column:verified;not null;default:false"`
	VerifiedBy       *string           `gorm:"column:verified_by;size:36"`
	VerifiedAt       *time.Time        `gorm:"column:verified_at"`
	RejectedBy       *string           `gorm:"column:rejected_by;size:36"`
	RejectedAt       *time.Time        `gorm:"column:rejected_at"`
	RejectionReason  string            `gorm:"column:rejection_reason;size:255"`
	SubmittedToSwift bool              `gorm:"column:submitted_to_swift;not null;default:false"`
	SubmittedBy      *string           `gorm:"column:submitted_by;size:36"`
	SubmittedAt      *time.Time        `gorm:"column:submitted_at"`
	SwiftReference   string            `gorm:"column:swift_reference;size:64"`
	CreatedAt        time.Time         `gorm:"column:created_at;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Transaction) TableName() string {
	return "transactions"
}
