package services

import (
	"errors"
	"strings"
	"time"

	"horizonBank/models"
	"horizonBank/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyProcessed    = errors.New("transaction already processed")
	ErrMissingReason       = errors.New("rejection reason is required")
	ErrNothingToSubmit     = errors.New("no verified transactions to submit")
	ErrInvalidSwiftCode    = errors.New("invalid SWIFT code format")
)

// LedgerService реализует жизненный цикл платежных транзакций.
// Единственная авторитетная таблица обслуживает и глобальный реестр
// для сотрудников, и личную историю клиента (выборка по sender_id)
type LedgerService struct {
	db        *gorm.DB
	validator *validator.Validate
	swift     *SwiftService
	email     *EmailService
}

// InitiateTransactionRequest представляет данные для создания платежа
type InitiateTransactionRequest struct {
	Amount           float64 `json:"amount" validate:"required,gte=0.01,lte=1000000"`
	Currency         string  `json:"currency" validate:"required,oneof=USD EUR GBP ZAR JPY CNY"`
	SwiftCode        string  `json:"swiftCode" validate:"required"`
	RecipientAccount string  `json:"recipientAccount" validate:"required,recipient_account"`
	RecipientName    string  `json:"recipientName" validate:"required,full_name"`
	Provider         string  `json:"provider" validate:"omitempty,eq=SWIFT"`
}

// TransactionDTO представляет транзакцию в ответах API
type TransactionDTO struct {
	ID                  string  `json:"id"`
	SenderAccount       string  `json:"senderAccount"`
	SenderName          string  `json:"senderName"`
	SenderID            string  `json:"senderId"`
	RecipientAccount    string  `json:"recipientAccount"`
	RecipientName       string  `json:"recipientName"`
	Amount              float64 `json:"amount"`
	Currency            string  `json:"currency"`
	SwiftCode           string  `json:"swiftCode"`
	Provider            string  `json:"provider"`
	Status              string  `json:"status"`
	Verified            bool    `json:"verified"`
	VerifiedBy          *string `json:"verifiedBy"`
	VerifiedAt          *string `json:"verifiedAt"`
	RejectedBy          *string `json:"rejectedBy,omitempty"`
	RejectedAt          *string `json:"rejectedAt,omitempty"`
	RejectionReason     string  `json:"rejectionReason,omitempty"`
	SubmittedToSwift    bool    `json:"submittedToSwift"`
	SubmittedBy         *string `json:"submittedBy,omitempty"`
	SubmittedAt         *string `json:"submittedAt,omitempty"`
	SwiftReference      string  `json:"swiftReference,omitempty"`
	CreatedAt           string  `json:"createdAt"`
	GlobalTransactionID string  `json:"globalTransactionId,omitempty"`
}

// NewLedgerService создает новый экземпляр LedgerService
func NewLedgerService(db *gorm.DB, swift *SwiftService, email *EmailService) *LedgerService {
	return &LedgerService{
		db:        db,
		validator: NewValidator(),
		swift:     swift,
		email:     email,
	}
}

// Initiate создает платеж от имени клиента в статусе pending
func (s *LedgerService) Initiate(userID string, req InitiateTransactionRequest) (*models.Transaction, error) {
	// Валидируем запрос
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	swiftCode := strings.ToUpper(strings.TrimSpace(req.SwiftCode))
	if !swiftCodeRegex.MatchString(swiftCode) {
		return nil, ErrInvalidSwiftCode
	}

	// Ищем отправителя
	var sender models.Account
	if err := s.db.First(&sender, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	transaction := &models.Transaction{
		ID:               uuid.NewString(),
		SenderAccount:    sender.AccountNumber,
		SenderName:       sender.FullName,
		SenderID:         sender.ID,
		RecipientAccount: strings.TrimSpace(req.RecipientAccount),
		RecipientName:    strings.TrimSpace(req.RecipientName),
		Amount:           decimal.NewFromFloat(req.Amount).Round(2),
		Currency:         req.Currency,
		SwiftCode:        swiftCode,
		Provider:         "SWIFT",
		Status:           models.StatusPending,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.db.Create(transaction).Error; err != nil {
		utils.GetMetrics().RecordLedgerOperation("initiate", 0, err)
		return nil, err
	}

	utils.GetMetrics().RecordLedgerOperation("initiate", 1, nil)
	utils.LogInfo("Транзакция %s создана, статус pending", transaction.ID)

	// Уведомление не должно ломать операцию
	if s.email != nil {
		if err := s.email.SendTransactionInitiated(sender.Email, transaction.ID, transaction.Amount, transaction.Currency); err != nil {
			utils.LogError("Ошибка отправки уведомления: %v", err)
		}
	}

	return transaction, nil
}

// Verify переводит транзакцию из pending в verified
func (s *LedgerService) Verify(transactionID, employeeID string) error {
	now := time.Now()

	// Compare-and-set: условие по статусу гарантирует ровно один успешный
	// переход при конкурентных verify/reject
	res := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transactionID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      models.StatusVerified,
			"verified":    true,
			"verified_by": employeeID,
			"verified_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return s.classifyMissedUpdate(transactionID)
	}

	utils.GetMetrics().RecordLedgerOperation("verify", 1, nil)
	utils.LogInfo("Транзакция %s подтверждена сотрудником %s", transactionID, employeeID)

	s.notifyStatusChange(transactionID, string(models.StatusVerified), "")
	return nil
}

// Reject переводит транзакцию из pending в rejected с указанием причины
func (s *LedgerService) Reject(transactionID, employeeID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrMissingReason
	}

	now := time.Now()

	res := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transactionID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":           models.StatusRejected,
			"rejected_by":      employeeID,
			"rejected_at":      now,
			"rejection_reason": reason,
			"updated_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return s.classifyMissedUpdate(transactionID)
	}

	utils.GetMetrics().RecordLedgerOperation("reject", 1, nil)
	utils.LogInfo("Транзакция %s отклонена сотрудником %s: %s", transactionID, employeeID, reason)

	s.notifyStatusChange(transactionID, string(models.StatusRejected), reason)
	return nil
}

// classifyMissedUpdate различает отсутствующую и уже обработанную транзакцию
func (s *LedgerService) classifyMissedUpdate(transactionID string) error {
	var tx models.Transaction
	if err := s.db.First(&tx, "id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}
	return ErrAlreadyProcessed
}

// SubmitToSwift атомарно переводит все verified транзакции в completed
// и возвращает их количество
func (s *LedgerService) SubmitToSwift(employeeID string) (int, error) {
	var submitted []models.Transaction
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var verified []models.Transaction
		if err := tx.Where("status = ?", models.StatusVerified).
			Order("created_at asc").
			Find(&verified).Error; err != nil {
			return err
		}

		if len(verified) == 0 {
			return ErrNothingToSubmit
		}

		for i := range verified {
			// Референс генерируется ровно один раз на транзакцию
			reference := s.swift.GenerateReference()

			if err := tx.Model(&models.Transaction{}).
				Where("id = ?", verified[i].ID).
				Updates(map[string]interface{}{
					"status":             models.StatusCompleted,
					"submitted_to_swift": true,
					"submitted_by":       employeeID,
					"submitted_at":       now,
					"swift_reference":    reference,
					"updated_at":         now,
				}).Error; err != nil {
				return err
			}

			verified[i].Status = models.StatusCompleted
			verified[i].SubmittedToSwift = true
			verified[i].SubmittedBy = &employeeID
			verified[i].SubmittedAt = &now
			verified[i].SwiftReference = reference
		}

		submitted = verified
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNothingToSubmit) {
			utils.GetMetrics().RecordLedgerOperation("submit", 0, err)
		}
		return 0, err
	}

	utils.GetMetrics().RecordLedgerOperation("submit", int64(len(submitted)), nil)
	utils.LogInfo("Отправлено %d транзакций в SWIFT сотрудником %s", len(submitted), employeeID)

	// Экспорт пакета и уведомления выполняются после фиксации
	if path, err := s.swift.ExportBatch(submitted, employeeID); err != nil {
		utils.LogError("Ошибка экспорта SWIFT-пакета: %v", err)
	} else {
		utils.LogInfo("SWIFT-пакет записан: %s", path)
	}

	if s.email != nil {
		for _, t := range submitted {
			var sender models.Account
			if err := s.db.First(&sender, "id = ?", t.SenderID).Error; err != nil {
				continue
			}
			if err := s.email.SendTransactionCompleted(sender.Email, t.ID, t.SwiftReference); err != nil {
				utils.LogError("Ошибка отправки уведомления: %v", err)
			}
		}
	}

	return len(submitted), nil
}

// GetPending возвращает все транзакции в статусе pending (старые первыми)
func (s *LedgerService) GetPending() ([]TransactionDTO, error) {
	return s.listByStatus(models.StatusPending, "created_at asc")
}

// GetCompleted возвращает все транзакции в статусе completed (новые первыми)
func (s *LedgerService) GetCompleted() ([]TransactionDTO, error) {
	return s.listByStatus(models.StatusCompleted, "created_at desc")
}

func (s *LedgerService) listByStatus(status models.TransactionStatus, order string) ([]TransactionDTO, error) {
	var transactions []models.Transaction
	if err := s.db.Where("status = ?", status).Order(order).Find(&transactions).Error; err != nil {
		return nil, err
	}

	dtos := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		dtos = append(dtos, ToTransactionDTO(t, false))
	}
	return dtos, nil
}

// GetByOwner возвращает историю транзакций клиента (новые первыми)
func (s *LedgerService) GetByOwner(userID string) ([]TransactionDTO, error) {
	var transactions []models.Transaction
	if err := s.db.Where("sender_id = ?", userID).
		Order("created_at desc").
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	dtos := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		// Личная история отдает globalTransactionId для совместимости клиентов
		dtos = append(dtos, ToTransactionDTO(t, true))
	}
	return dtos, nil
}

// GetByID возвращает транзакцию клиента; чужие и отсутствующие неразличимы
func (s *LedgerService) GetByID(ownerID, transactionID string) (*TransactionDTO, error) {
	var transaction models.Transaction
	err := s.db.Where("id = ? AND sender_id = ?", transactionID, ownerID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	dto := ToTransactionDTO(transaction, true)
	return &dto, nil
}

// notifyStatusChange отправляет владельцу уведомление об изменении статуса
func (s *LedgerService) notifyStatusChange(transactionID, status, reason string) {
	if s.email == nil {
		return
	}

	var transaction models.Transaction
	if err := s.db.First(&transaction, "id = ?", transactionID).Error; err != nil {
		return
	}

	var sender models.Account
	if err := s.db.First(&sender, "id = ?", transaction.SenderID).Error; err != nil {
		return
	}

	if err := s.email.SendTransactionStatusChanged(sender.Email, transactionID, status, reason); err != nil {
		utils.LogError("Ошибка отправки уведомления: %v", err)
	}
}

// ToTransactionDTO конвертирует модель в DTO ответа API
func ToTransactionDTO(t models.Transaction, withGlobalRef bool) TransactionDTO {
	dto := TransactionDTO{
		ID:               t.ID,
		SenderAccount:    t.SenderAccount,
		SenderName:       t.SenderName,
		SenderID:         t.SenderID,
		RecipientAccount: t.RecipientAccount,
		RecipientName:    t.RecipientName,
		Amount:           t.Amount.InexactFloat64(),
		Currency:         t.Currency,
		SwiftCode:        t.SwiftCode,
		Provider:         t.Provider,
		Status:           string(t.Status),
		Verified:         t.Verified,
		VerifiedBy:       t.VerifiedBy,
		RejectedBy:       t.RejectedBy,
		RejectionReason:  t.RejectionReason,
		SubmittedToSwift: t.SubmittedToSwift,
		SubmittedBy:      t.SubmittedBy,
		SwiftReference:   t.SwiftReference,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
	}

	if t.VerifiedAt != nil {
		v := t.VerifiedAt.Format(time.RFC3339)
		dto.VerifiedAt = &v
	}
	if t.RejectedAt != nil {
		v := t.RejectedAt.Format(time.RFC3339)
		dto.RejectedAt = &v
	}
	if t.SubmittedAt != nil {
		v := t.SubmittedAt.Format(time.RFC3339)
		dto.SubmittedAt = &v
	}

	if withGlobalRef {
		dto.GlobalTransactionID = t.ID
	}

	return dto
}
