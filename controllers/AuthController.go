package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"horizonBank/config"
	"horizonBank/middleware"
	"horizonBank/services"
	"horizonBank/utils"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

type AuthController struct {
	accountService *services.AccountService
	validate       *validator.Validate
	config         *config.Config
}

type RegisterRequest struct {
	FullName      string `json:"fullName" validate:"required,full_name"`
	IDNumber      string `json:"idNumber" validate:"required,id_number"`
	AccountNumber string `json:"accountNumber" validate:"required,account_number"`
	Password      string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

type EmployeeLoginRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(accountService *services.AccountService, cfg *config.Config) *AuthController {
	return &AuthController{
		accountService: accountService,
		validate:       services.NewValidator(),
		config:         cfg,
	}
}

// validationErrors конвертирует ошибки валидации в ответ API
func validationErrors(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Field: "", Message: "invalid request"}}
	}

	out := make([]fieldError, 0, len(verrs))
	for _, e := range verrs {
		var message string
		switch e.Tag() {
		case "required":
			message = e.Field() + " is required"
		case "full_name":
			message = "Name must be 2-100 letters and spaces"
		case "id_number":
			message = "ID number must be exactly 13 digits"
		case "account_number":
			message = "Account number must be 8-20 alphanumeric characters"
		case "password":
			message = "Password must contain: uppercase, lowercase, number, and special character (@$!%*?&)"
		default:
			message = e.Field() + " is invalid"
		}
		out = append(out, fieldError{Field: e.Field(), Message: message})
	}
	return out
}

// Register обрабатывает регистрацию нового клиента
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.IDNumber = strings.TrimSpace(req.IDNumber)
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)

	// Валидация запроса
	if err := c.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"errors":  validationErrors(err),
		})
		return
	}

	account, err := c.accountService.CreateAccount(services.CreateAccountRequest{
		FullName:      req.FullName,
		IDNumber:      req.IDNumber,
		AccountNumber: req.AccountNumber,
		Password:      req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateAccountNumber):
			writeError(w, http.StatusConflict, "Account number already exists")
		case errors.Is(err, services.ErrDuplicateIDNumber):
			writeError(w, http.StatusConflict, "ID number already exists")
		default:
			utils.LogError("Ошибка регистрации: %v", err)
			writeError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	utils.LogInfo("Зарегистрирован пользователь %s", account.AccountNumber)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Registration successful",
		"user": map[string]interface{}{
			"uid":           account.ID,
			"fullName":      account.FullName,
			"accountNumber": account.AccountNumber,
		},
	})
}

// Login обрабатывает вход клиента
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"errors":  validationErrors(err),
		})
		return
	}

	// Одинаковый ответ для неизвестного счета и неверного пароля,
	// чтобы не раскрывать существование учетной записи
	account, err := c.accountService.FindByAccountNumber(strings.TrimSpace(req.AccountNumber))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !c.accountService.VerifyPassword(account, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := c.generateToken(account.ID, account.Email)
	if err != nil {
		utils.LogError("Ошибка генерации токена: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.LogInfo("Вход пользователя %s", account.AccountNumber)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user": map[string]interface{}{
			"uid":           account.ID,
			"fullName":      account.FullName,
			"accountNumber": account.AccountNumber,
		},
	})
}

// EmployeeLogin обрабатывает вход сотрудника
func (c *AuthController) EmployeeLogin(w http.ResponseWriter, r *http.Request) {
	var req EmployeeLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"errors":  validationErrors(err),
		})
		return
	}

	employeeID := strings.ToUpper(strings.TrimSpace(req.EmployeeID))

	// Ответ одинаков для всех вариантов отказа
	account, err := c.accountService.FindByAccountNumber(employeeID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid employee credentials")
		return
	}

	if !account.IsAdmin {
		writeError(w, http.StatusUnauthorized, "Invalid employee credentials")
		return
	}

	if !c.accountService.VerifyPassword(account, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid employee credentials")
		return
	}

	token, err := c.generateToken(account.ID, account.Email)
	if err != nil {
		utils.LogError("Ошибка генерации токена: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.LogInfo("Вход сотрудника %s", account.AccountNumber)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Employee login successful",
		"token":   token,
		"user": map[string]interface{}{
			"uid":           account.ID,
			"fullName":      account.FullName,
			"accountNumber": account.AccountNumber,
			"email":         account.Email,
			"isAdmin":       true,
			"role":          "employee",
		},
	})
}

// Profile возвращает профиль текущего пользователя без хеша пароля
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	account, err := c.accountService.FindByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"uid":           account.ID,
			"fullName":      account.FullName,
			"accountNumber": account.AccountNumber,
			"idNumber":      account.IDNumber,
			"email":         account.Email,
			"isAdmin":       account.IsAdmin,
			"createdAt":     account.CreatedAt.Format(time.RFC3339),
		},
	})
}

// Check проверяет, аутентифицирован ли пользователь
func (c *AuthController) Check(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"authenticated": false,
		})
		return
	}

	account, err := c.accountService.FindByID(userID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"authenticated": false,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"authenticated": true,
		"user": map[string]interface{}{
			"uid":           account.ID,
			"fullName":      account.FullName,
			"accountNumber": account.AccountNumber,
		},
	})
}

// Logout подтверждает выход; токены не хранятся на сервере
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}

// GetJWTKey возвращает ключ для JWT
func (c *AuthController) GetJWTKey() string {
	return c.config.JWT.SecretKey
}

// generateToken создает JWT токен
func (c *AuthController) generateToken(userID, email string) (string, error) {
	expirationTime := time.Now().Add(time.Duration(c.config.JWT.ExpiresIn) * time.Hour)
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     expirationTime.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.config.JWT.SecretKey))
}
