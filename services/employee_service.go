package services

import (
	"errors"

	"horizonBank/utils"
)

// EmployeeService создает служебные учетные записи сотрудников
type EmployeeService struct {
	accounts *AccountService
}

// Предопределенные сотрудники для стенда
var defaultEmployees = []CreateAccountRequest{
	{
		FullName:      "Employee One",
		AccountNumber: "EMP00001",
		IDNumber:      "9001015800081",
		Password:      "SecureEmp1@123",
		IsAdmin:       true,
	},
	{
		FullName:      "Employee Two",
		AccountNumber: "EMP00002",
		IDNumber:      "9002026800082",
		Password:      "SecureEmp2@123",
		IsAdmin:       true,
	},
}

// NewEmployeeService создает новый экземпляр EmployeeService
func NewEmployeeService(accounts *AccountService) *EmployeeService {
	return &EmployeeService{accounts: accounts}
}

// ProvisionDefaults создает предопределенных сотрудников, пропуская существующих
func (s *EmployeeService) ProvisionDefaults() error {
	for _, emp := range defaultEmployees {
		_, err := s.accounts.CreateAccount(emp)
		if err != nil {
			if errors.Is(err, ErrDuplicateAccountNumber) || errors.Is(err, ErrDuplicateIDNumber) {
				utils.LogInfo("Сотрудник %s уже существует, пропускаем", emp.AccountNumber)
				continue
			}
			return err
		}
		utils.LogInfo("Создан сотрудник %s (%s)", emp.FullName, emp.AccountNumber)
	}
	return nil
}
