package services

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Контракты границы API: регулярные выражения должны совпадать
// с клиентскими правилами один в один
var (
	fullNameRegex         = regexp.MustCompile(`^[A-Za-z\s]{2,100}$`)
	idNumberRegex         = regexp.MustCompile(`^\d{13}$`)
	accountNumberRegex    = regexp.MustCompile(`^[A-Za-z0-9]{8,20}$`)
	recipientAccountRegex = regexp.MustCompile(`^[A-Za-z0-9]{8,34}$`)
	swiftCodeRegex        = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)

	passwordLowerRegex   = regexp.MustCompile(`[a-z]`)
	passwordUpperRegex   = regexp.MustCompile(`[A-Z]`)
	passwordDigitRegex   = regexp.MustCompile(`\d`)
	passwordSpecialRegex = regexp.MustCompile(`[@$!%*?&]`)
)

// NewValidator создает validator со всеми банковскими правилами
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterBankValidations(v)
	return v
}

// RegisterBankValidations регистрирует кастомные валидации границы API
func RegisterBankValidations(v *validator.Validate) {
	v.RegisterValidation("full_name", func(fl validator.FieldLevel) bool {
		return fullNameRegex.MatchString(fl.Field().String())
	})

	v.RegisterValidation("id_number", func(fl validator.FieldLevel) bool {
		return idNumberRegex.MatchString(fl.Field().String())
	})

	v.RegisterValidation("account_number", func(fl validator.FieldLevel) bool {
		return accountNumberRegex.MatchString(fl.Field().String())
	})

	v.RegisterValidation("recipient_account", func(fl validator.FieldLevel) bool {
		return recipientAccountRegex.MatchString(fl.Field().String())
	})

	v.RegisterValidation("swift_code", func(fl validator.FieldLevel) bool {
		return swiftCodeRegex.MatchString(fl.Field().String())
	})

	// Пароль: минимум 8 символов, строчная, заглавная, цифра и спецсимвол
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		if len(password) < 8 {
			return false
		}
		return passwordLowerRegex.MatchString(password) &&
			passwordUpperRegex.MatchString(password) &&
			passwordDigitRegex.MatchString(password) &&
			passwordSpecialRegex.MatchString(password)
	})
}
