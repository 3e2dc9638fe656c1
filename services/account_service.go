package services

import (
	"errors"
	"strings"
	"time"

	"horizonBank/models"
	"horizonBank/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	ErrDuplicateIDNumber      = errors.New("id number already exists")
)

// AccountService предоставляет методы для работы с учетными записями
type AccountService struct {
	db     *gorm.DB
	pepper string
}

// CreateAccountRequest представляет данные для создания учетной записи
type CreateAccountRequest struct {
	FullName      string
	IDNumber      string
	AccountNumber string
	Password      string
	IsAdmin       bool
}

// CustomerDTO представляет запись клиента для сотрудников
type CustomerDTO struct {
	ID            string `json:"id"`
	FullName      string `json:"fullName"`
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email"`
	IDNumber      string `json:"idNumber"`
	CreatedAt     string `json:"createdAt"`
}

// UserSummaryDTO представляет минимальные данные пользователя для поиска
type UserSummaryDTO struct {
	FullName      string `json:"fullName"`
	AccountNumber string `json:"accountNumber"`
}

// NewAccountService создает новый экземпляр AccountService
func NewAccountService(db *gorm.DB, pepper string) *AccountService {
	return &AccountService{db: db, pepper: pepper}
}

// CreateAccount создает новую учетную запись
func (s *AccountService) CreateAccount(req CreateAccountRequest) (*models.Account, error) {
	// Предварительная проверка дубликатов дает точное сообщение об ошибке;
	// саму гонку закрывает уникальный индекс
	var existing models.Account
	if err := s.db.Where("account_number = ?", req.AccountNumber).First(&existing).Error; err == nil {
		return nil, ErrDuplicateAccountNumber
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.db.Where("id_number = ?", req.IDNumber).First(&existing).Error; err == nil {
		return nil, ErrDuplicateIDNumber
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Хешируем пароль
	hash, err := utils.HashPassword(req.Password, s.pepper)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:            uuid.NewString(),
		FullName:      req.FullName,
		AccountNumber: req.AccountNumber,
		IDNumber:      req.IDNumber,
		Email:         strings.ToLower(req.AccountNumber) + "@horizonbank.com",
		PasswordHash:  hash,
		IsAdmin:       req.IsAdmin,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Конкурентная регистрация прошла проверку выше; определяем поле повторным запросом
			var other models.Account
			if lookupErr := s.db.Where("account_number = ?", req.AccountNumber).First(&other).Error; lookupErr == nil {
				return nil, ErrDuplicateAccountNumber
			}
			return nil, ErrDuplicateIDNumber
		}
		return nil, err
	}

	return account, nil
}

// FindByID ищет учетную запись по идентификатору
func (s *AccountService) FindByID(id string) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByAccountNumber ищет учетную запись по номеру счета
func (s *AccountService) FindByAccountNumber(number string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("account_number = ?", number).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ListAll возвращает краткие данные всех пользователей
func (s *AccountService) ListAll() ([]UserSummaryDTO, error) {
	var accounts []models.Account
	if err := s.db.Find(&accounts).Error; err != nil {
		return nil, err
	}

	users := make([]UserSummaryDTO, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, UserSummaryDTO{
			FullName:      a.FullName,
			AccountNumber: a.AccountNumber,
		})
	}
	return users, nil
}

// ListCustomers возвращает всех клиентов (без служебных учетных записей)
func (s *AccountService) ListCustomers() ([]CustomerDTO, error) {
	var accounts []models.Account
	if err := s.db.Where("is_admin = ?", false).Find(&accounts).Error; err != nil {
		return nil, err
	}

	customers := make([]CustomerDTO, 0, len(accounts))
	for _, a := range accounts {
		customers = append(customers, CustomerDTO{
			ID:            a.ID,
			FullName:      a.FullName,
			AccountNumber: a.AccountNumber,
			Email:         a.Email,
			IDNumber:      a.IDNumber,
			CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		})
	}
	return customers, nil
}

// Search ищет пользователей по подстроке имени или номера счета
func (s *AccountService) Search(query string) ([]UserSummaryDTO, error) {
	// Слишком короткий запрос не ищем
	if len(strings.TrimSpace(query)) < 2 {
		return []UserSummaryDTO{}, nil
	}

	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var accounts []models.Account
	err := s.db.
		Where("LOWER(full_name) LIKE ? OR LOWER(account_number) LIKE ?", pattern, pattern).
		Limit(10).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	users := make([]UserSummaryDTO, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, UserSummaryDTO{
			FullName:      a.FullName,
			AccountNumber: a.AccountNumber,
		})
	}
	return users, nil
}

// VerifyPassword проверяет пароль учетной записи
func (s *AccountService) VerifyPassword(account *models.Account, password string) bool {
	return utils.VerifyPassword(password, account.PasswordHash, s.pepper)
}
