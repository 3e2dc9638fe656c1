package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"horizonBank/config"
	"horizonBank/models"
	"horizonBank/services"

	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var apiTestDBSeq atomic.Int64

// testStack поднимает роутер со всеми сервисами поверх in-memory базы
type testStack struct {
	router   *mux.Router
	db       *gorm.DB
	accounts *services.AccountService
	outbox   string
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "integration-test-secret"
	cfg.JWT.ExpiresIn = 1
	cfg.PasswordPepper = "test-pepper"
	cfg.SwiftOutboxDir = filepath.Join(t.TempDir(), "swift-outbox")

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"), apiTestDBSeq.Add(1))
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

	return &testStack{
		router:   newRouter(cfg, db, nil),
		db:       db,
		accounts: services.NewAccountService(db, cfg.PasswordPepper),
		outbox:   cfg.SwiftOutboxDir,
	}
}

func (s *testStack) request(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if len(rec.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func (s *testStack) registerCustomer(t *testing.T) {
	t.Helper()

	rec, body := s.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName":      "Sarah Connor",
		"idNumber":      "1234567890123",
		"accountNumber": "ACC10000001",
		"password":      "Str0ngP@ss",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", rec.Code, body)
	}
}

func (s *testStack) loginCustomer(t *testing.T) string {
	t.Helper()

	rec, body := s.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"accountNumber": "ACC10000001",
		"password":      "Str0ngP@ss",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", rec.Code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login: expected token in response")
	}
	return token
}

func (s *testStack) loginEmployee(t *testing.T) string {
	t.Helper()

	if _, err := s.accounts.CreateAccount(services.CreateAccountRequest{
		FullName:      "Employee One",
		AccountNumber: "EMP00001",
		IDNumber:      "9001015800081",
		Password:      "SecureEmp1@123",
		IsAdmin:       true,
	}); err != nil {
		t.Fatalf("failed to create employee: %v", err)
	}

	// Идентификатор сотрудника нечувствителен к регистру
	rec, body := s.request(t, http.MethodPost, "/api/auth/employee-login", "", map[string]string{
		"employeeId": "emp00001",
		"password":   "SecureEmp1@123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("employee login: expected 200, got %d (%v)", rec.Code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("employee login: expected token in response")
	}
	return token
}

func (s *testStack) initiate(t *testing.T, token string) string {
	t.Helper()

	rec, body := s.request(t, http.MethodPost, "/api/transactions/initiate", token, map[string]interface{}{
		"amount":           500.00,
		"currency":         "USD",
		"swiftCode":        "ABCDEFGH",
		"recipientAccount": "RCPT0000001",
		"recipientName":    "Jane Doe",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("initiate: expected 201, got %d (%v)", rec.Code, body)
	}

	tx, _ := body["transaction"].(map[string]interface{})
	id, _ := tx["id"].(string)
	if id == "" {
		t.Fatalf("initiate: expected transaction id, got %v", body)
	}
	if tx["status"] != "pending" {
		t.Fatalf("initiate: expected pending status, got %v", tx["status"])
	}
	if tx["globalTransactionId"] != id {
		t.Fatalf("initiate: expected globalTransactionId to equal id, got %v", tx["globalTransactionId"])
	}
	return id
}

func TestTransactionLifecycleOverAPI(t *testing.T) {
	stack := newTestStack(t)

	stack.registerCustomer(t)
	customerToken := stack.loginCustomer(t)
	employeeToken := stack.loginEmployee(t)

	// Некорректный SWIFT-код отклоняется на границе
	rec0, body0 := stack.request(t, http.MethodPost, "/api/transactions/initiate", customerToken, map[string]interface{}{
		"amount":           500.00,
		"currency":         "USD",
		"swiftCode":        "AB12",
		"recipientAccount": "RCPT0000001",
		"recipientName":    "Jane Doe",
	})
	if rec0.Code != http.StatusBadRequest {
		t.Fatalf("bad swift code: expected 400, got %d (%v)", rec0.Code, body0)
	}
	if msg, _ := body0["message"].(string); !strings.Contains(msg, "Invalid SWIFT code format") {
		t.Fatalf("bad swift code: unexpected message %q", msg)
	}

	txID := stack.initiate(t, customerToken)

	// Клиент не имеет доступа к маршрутам сотрудника
	rec, _ := stack.request(t, http.MethodGet, "/api/transactions/pending", customerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer on admin route: expected 403, got %d", rec.Code)
	}

	// Сотрудник видит ожидающую транзакцию
	rec, body := stack.request(t, http.MethodGet, "/api/transactions/pending", employeeToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pending: expected 200, got %d (%v)", rec.Code, body)
	}
	pending, _ := body["transactions"].([]interface{})
	if len(pending) != 1 {
		t.Fatalf("pending: expected 1 transaction, got %d", len(pending))
	}

	// Подтверждение
	rec, _ = stack.request(t, http.MethodPost, "/api/transactions/"+txID+"/verify", employeeToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", rec.Code)
	}

	// Повторное подтверждение конфликтует
	rec, _ = stack.request(t, http.MethodPost, "/api/transactions/"+txID+"/verify", employeeToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("double verify: expected 409, got %d", rec.Code)
	}

	// Пакетная отправка в SWIFT
	rec, body = stack.request(t, http.MethodPost, "/api/transactions/submit-to-swift", employeeToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d (%v)", rec.Code, body)
	}
	if body["submittedCount"] != float64(1) {
		t.Fatalf("submit: expected submittedCount 1, got %v", body["submittedCount"])
	}

	// Пакет записан в исходящую директорию
	files, err := os.ReadDir(stack.outbox)
	if err != nil || len(files) != 1 {
		t.Fatalf("expected 1 exported batch file, got %v (%v)", files, err)
	}

	// Клиент видит завершенную транзакцию со SWIFT-референсом
	rec, body = stack.request(t, http.MethodGet, "/api/transactions/my-transactions", customerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my-transactions: expected 200, got %d", rec.Code)
	}
	history, _ := body["transactions"].([]interface{})
	if len(history) != 1 {
		t.Fatalf("my-transactions: expected 1 transaction, got %d", len(history))
	}
	final, _ := history[0].(map[string]interface{})
	if final["status"] != "completed" {
		t.Errorf("expected completed status, got %v", final["status"])
	}
	if ref, _ := final["swiftReference"].(string); !strings.HasPrefix(ref, "SWIFT-") {
		t.Errorf("expected SWIFT reference, got %v", final["swiftReference"])
	}

	// Повторная отправка без подтвержденных транзакций отклоняется
	rec, _ = stack.request(t, http.MethodPost, "/api/transactions/submit-to-swift", employeeToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("resubmit: expected 400, got %d", rec.Code)
	}
}

func TestRejectFlowOverAPI(t *testing.T) {
	stack := newTestStack(t)

	stack.registerCustomer(t)
	customerToken := stack.loginCustomer(t)
	employeeToken := stack.loginEmployee(t)

	txID := stack.initiate(t, customerToken)

	// Отклонение без причины не проходит
	rec, _ := stack.request(t, http.MethodPost, "/api/transactions/"+txID+"/reject", employeeToken, map[string]string{
		"reason": "   ",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reject without reason: expected 400, got %d", rec.Code)
	}

	rec, _ = stack.request(t, http.MethodPost, "/api/transactions/"+txID+"/reject", employeeToken, map[string]string{
		"reason": "insufficient beneficiary details",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d", rec.Code)
	}

	// Отклоненная транзакция больше не подтверждается
	rec, _ = stack.request(t, http.MethodPost, "/api/transactions/"+txID+"/verify", employeeToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("verify after reject: expected 409, got %d", rec.Code)
	}

	// Причина видна клиенту в истории
	rec, body := stack.request(t, http.MethodGet, "/api/transactions/"+txID, customerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get by id: expected 200, got %d", rec.Code)
	}
	tx, _ := body["transaction"].(map[string]interface{})
	if tx["status"] != "rejected" {
		t.Errorf("expected rejected status, got %v", tx["status"])
	}
	if tx["rejectionReason"] != "insufficient beneficiary details" {
		t.Errorf("unexpected rejection reason: %v", tx["rejectionReason"])
	}
}

func TestAuthFlowOverAPI(t *testing.T) {
	stack := newTestStack(t)

	stack.registerCustomer(t)

	// Повторная регистрация с тем же номером счета конфликтует
	rec, body := stack.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName":      "Someone Else",
		"idNumber":      "9994567890123",
		"accountNumber": "ACC10000001",
		"password":      "Str0ngP@ss",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d (%v)", rec.Code, body)
	}

	// Неверный пароль дает общий отказ
	rec, _ = stack.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"accountNumber": "ACC10000001",
		"password":      "WrongP@ss1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}

	// Защищенный маршрут без токена недоступен
	rec, _ = stack.request(t, http.MethodGet, "/api/auth/profile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	token := stack.loginCustomer(t)
	rec, body = stack.request(t, http.MethodGet, "/api/auth/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", rec.Code)
	}
	user, _ := body["user"].(map[string]interface{})
	if user["accountNumber"] != "ACC10000001" {
		t.Errorf("unexpected profile: %v", user)
	}
}
