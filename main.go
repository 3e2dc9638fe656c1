package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"horizonBank/config"
	"horizonBank/controllers"
	"horizonBank/database"
	"horizonBank/middleware"
	"horizonBank/services"
	"horizonBank/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// healthHandler отвечает на проверку живости
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"message":   "Server running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// newRouter собирает все сервисы, контроллеры и маршруты приложения
func newRouter(cfg *config.Config, db *gorm.DB, emailService *services.EmailService) *mux.Router {
	// Инициализируем сервисы
	accountService := services.NewAccountService(db, cfg.PasswordPepper)
	swiftService := services.NewSwiftService(cfg.SwiftOutboxDir)
	ledgerService := services.NewLedgerService(db, swiftService, emailService)

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(accountService, cfg)
	transactionController := controllers.NewTransactionController(ledgerService, accountService)

	// Ограничители частоты запросов (фиксированное окно)
	loginLimiter := utils.NewRateLimiter(5, 15*time.Minute)
	registerLimiter := utils.NewRateLimiter(3, time.Hour)
	transactionLimiter := utils.NewRateLimiter(20, time.Hour)
	apiLimiter := utils.NewRateLimiter(100, 15*time.Minute)

	// Создаем роутер
	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RateLimit(apiLimiter, "Rate limit exceeded. Please try again later."))

	router.HandleFunc("/api/health", healthHandler).Methods("GET")

	// Публичные маршруты для аутентификации
	router.HandleFunc("/api/auth/register",
		middleware.RateLimitHandler(registerLimiter, "Too many registration attempts. Please try again later.", authController.Register)).Methods("POST")
	router.HandleFunc("/api/auth/login",
		middleware.RateLimitHandler(loginLimiter, "Too many login attempts. Please try again after 15 minutes.", authController.Login)).Methods("POST")
	router.HandleFunc("/api/auth/employee-login",
		middleware.RateLimitHandler(loginLimiter, "Too many login attempts. Please try again after 15 minutes.", authController.EmployeeLogin)).Methods("POST")

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)

	protected.HandleFunc("/auth/profile", authController.Profile).Methods("GET")
	protected.HandleFunc("/auth/check", authController.Check).Methods("GET")
	protected.HandleFunc("/auth/logout", authController.Logout).Methods("POST")

	// Доступ сотрудника проверяется по свежему значению is_admin
	adminOnly := middleware.RequireAdmin(accountService)

	// Маршруты клиента
	protected.HandleFunc("/transactions/initiate",
		middleware.RateLimitHandler(transactionLimiter, "Transaction limit reached. Please try again later.", transactionController.Initiate)).Methods("POST")
	protected.HandleFunc("/transactions/my-transactions", transactionController.MyTransactions).Methods("GET")
	protected.HandleFunc("/transactions/search-users", transactionController.SearchUsers).Methods("GET")
	protected.HandleFunc("/transactions/all-users", transactionController.AllUsers).Methods("GET")

	// Маршруты сотрудника
	protected.HandleFunc("/transactions/pending", adminOnly(transactionController.Pending)).Methods("GET")
	protected.HandleFunc("/transactions/completed", adminOnly(transactionController.Completed)).Methods("GET")
	protected.HandleFunc("/transactions/customers", adminOnly(transactionController.Customers)).Methods("GET")
	protected.HandleFunc("/transactions/submit-to-swift", adminOnly(transactionController.SubmitToSwift)).Methods("POST")
	protected.HandleFunc("/transactions/{transactionId}/verify", adminOnly(transactionController.Verify)).Methods("POST")
	protected.HandleFunc("/transactions/{transactionId}/reject", adminOnly(transactionController.Reject)).Methods("POST")
	protected.HandleFunc("/metrics", adminOnly(transactionController.Metrics)).Methods("GET")

	// Маршрут с параметром регистрируется после фиксированных путей
	protected.HandleFunc("/transactions/{transactionId}", transactionController.GetByID).Methods("GET")

	return router
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	utils.SetLogDir(cfg.LogDir)

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	// Создаем служебные учетные записи сотрудников, если включено
	if cfg.SeedEmployees {
		accountService := services.NewAccountService(db.DB, cfg.PasswordPepper)
		employeeService := services.NewEmployeeService(accountService)
		if err := employeeService.ProvisionDefaults(); err != nil {
			log.Fatalf("Ошибка создания сотрудников: %v", err)
		}
	}

	emailService := services.NewEmailService(cfg)
	router := newRouter(cfg, db.DB, emailService)

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
