package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"horizonBank/middleware"
	"horizonBank/services"
	"horizonBank/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// TransactionController обрабатывает запросы жизненного цикла платежей
type TransactionController struct {
	ledger   *services.LedgerService
	accounts *services.AccountService
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// NewTransactionController создает новый экземпляр TransactionController
func NewTransactionController(ledger *services.LedgerService, accounts *services.AccountService) *TransactionController {
	return &TransactionController{
		ledger:   ledger,
		accounts: accounts,
	}
}

// Initiate обрабатывает создание международного платежа клиентом
func (c *TransactionController) Initiate(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req services.InitiateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction, err := c.ledger.Initiate(userID, req)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeError(w, http.StatusBadRequest, "Validation failed")
		case errors.Is(err, services.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrInvalidSwiftCode):
			writeError(w, http.StatusBadRequest, "Invalid SWIFT code format (e.g., ABCDEF2A or ABCDEF2AXXX)")
		default:
			utils.LogError("Ошибка создания транзакции: %v", err)
			writeError(w, http.StatusInternalServerError, "Transaction failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"message":     "Transaction initiated and pending employee verification",
		"transaction": services.ToTransactionDTO(*transaction, true),
	})
}

// MyTransactions возвращает историю транзакций текущего клиента
func (c *TransactionController) MyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	transactions, err := c.ledger.GetByOwner(userID)
	if err != nil {
		utils.LogError("Ошибка получения истории транзакций: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"count":        len(transactions),
		"transactions": transactions,
	})
}

// GetByID возвращает транзакцию из истории текущего клиента
func (c *TransactionController) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	transactionID := mux.Vars(r)["transactionId"]

	transaction, err := c.ledger.GetByID(userID, transactionID)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch transaction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"transaction": transaction,
	})
}

// SearchUsers ищет пользователей для автодополнения получателя
func (c *TransactionController) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	users, err := c.accounts.Search(query)
	if err != nil {
		utils.LogError("Ошибка поиска пользователей: %v", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

// AllUsers возвращает краткий список всех пользователей
func (c *TransactionController) AllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.accounts.ListAll()
	if err != nil {
		utils.LogError("Ошибка получения пользователей: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

// Pending возвращает транзакции, ожидающие проверки сотрудником
func (c *TransactionController) Pending(w http.ResponseWriter, r *http.Request) {
	transactions, err := c.ledger.GetPending()
	if err != nil {
		utils.LogError("Ошибка получения ожидающих транзакций: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch pending transactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"transactions": transactions,
	})
}

// Completed возвращает завершенные транзакции
func (c *TransactionController) Completed(w http.ResponseWriter, r *http.Request) {
	transactions, err := c.ledger.GetCompleted()
	if err != nil {
		utils.LogError("Ошибка получения завершенных транзакций: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch completed transactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"transactions": transactions,
	})
}

// Customers возвращает список всех клиентов для сотрудников
func (c *TransactionController) Customers(w http.ResponseWriter, r *http.Request) {
	customers, err := c.accounts.ListCustomers()
	if err != nil {
		utils.LogError("Ошибка получения клиентов: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch customers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"customers": customers,
	})
}

// Verify подтверждает ожидающую транзакцию
func (c *TransactionController) Verify(w http.ResponseWriter, r *http.Request) {
	employeeID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	transactionID := mux.Vars(r)["transactionId"]

	if err := c.ledger.Verify(transactionID, employeeID); err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionNotFound):
			writeError(w, http.StatusNotFound, "Transaction not found")
		case errors.Is(err, services.ErrAlreadyProcessed):
			writeError(w, http.StatusConflict, "Transaction already processed")
		default:
			utils.LogError("Ошибка подтверждения транзакции: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify transaction")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Transaction verified successfully",
	})
}

// Reject отклоняет ожидающую транзакцию с указанием причины
func (c *TransactionController) Reject(w http.ResponseWriter, r *http.Request) {
	employeeID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	transactionID := mux.Vars(r)["transactionId"]

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.ledger.Reject(transactionID, employeeID, req.Reason); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingReason):
			writeError(w, http.StatusBadRequest, "Rejection reason is required")
		case errors.Is(err, services.ErrTransactionNotFound):
			writeError(w, http.StatusNotFound, "Transaction not found")
		case errors.Is(err, services.ErrAlreadyProcessed):
			writeError(w, http.StatusConflict, "Transaction already processed")
		default:
			utils.LogError("Ошибка отклонения транзакции: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to reject transaction")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Transaction rejected successfully",
	})
}

// SubmitToSwift пакетно отправляет все подтвержденные транзакции
func (c *TransactionController) SubmitToSwift(w http.ResponseWriter, r *http.Request) {
	employeeID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	count, err := c.ledger.SubmitToSwift(employeeID)
	if err != nil {
		if errors.Is(err, services.ErrNothingToSubmit) {
			writeError(w, http.StatusBadRequest, "No verified transactions to submit")
			return
		}
		utils.LogError("Ошибка отправки в SWIFT: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to submit transactions to SWIFT")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"message":        "Transactions submitted to SWIFT successfully",
		"submittedCount": count,
	})
}

// Metrics возвращает снимок метрик приложения
func (c *TransactionController) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"metrics": utils.GetMetrics().GetMetricsSnapshot(),
	})
}
