package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"horizonBank/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPepper = "test-pepper"

var testDBSeq atomic.Int64

// newTestDB открывает изолированную in-memory базу для одного теста
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Именованная shared-память, чтобы пул соединений видел одну базу.
	// Счетчик в имени дает свежую базу на каждый вызов, включая повторные
	// прогоны одного теста в рамках процесса
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_busy_timeout=5000",
		strings.ReplaceAll(t.Name(), "/", "_"), testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Account{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// newTestLedger собирает ledger-сервис поверх тестовой базы
func newTestLedger(t *testing.T) (*LedgerService, *AccountService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	accounts := NewAccountService(db, testPepper)
	swift := NewSwiftService(t.TempDir())
	ledger := NewLedgerService(db, swift, nil)

	return ledger, accounts, db
}

// createTestCustomer создает клиента для тестов
func createTestCustomer(t *testing.T, accounts *AccountService, accountNumber, idNumber string) *models.Account {
	t.Helper()

	account, err := accounts.CreateAccount(CreateAccountRequest{
		FullName:      "Test Customer",
		AccountNumber: accountNumber,
		IDNumber:      idNumber,
		Password:      "Str0ngP@ss",
	})
	if err != nil {
		t.Fatalf("failed to create test customer: %v", err)
	}
	return account
}
