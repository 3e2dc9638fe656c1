package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Account struct {
	ID            string    `gorm:"primaryKey;size:36"`
	FullName      string    `gorm:"column:full_name;not null;size:100"`
	AccountNumber string    `gorm:"column:account_number;uniqueIndex;not null;size:20"`
	IDNumber      string    `gorm:"column:id_number;uniqueIndex;not null;size:13"`
	Email         string    `gorm:"column:email;not null;size:100;index"`
	PasswordHash  string    `gorm:"column:password_hash;not null;size:100"`
	IsAdmin       bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate хук для валидации перед созданием
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if len(a.FullName) < 2 || len(a.FullName) > 100 {
		return errors.New("full name must be between 2 and 100 characters")
	}
	if len(a.AccountNumber) < 8 || len(a.AccountNumber) > 20 {
		return errors.New("account number must be between 8 and 20 characters")
	}
	if len(a.IDNumber) != 13 {
		return errors.New("id number must be exactly 13 digits")
	}
	return nil
}
