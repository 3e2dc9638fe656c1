package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Стоимость bcrypt для хеширования паролей
const bcryptCost = 12

// HashPassword создает bcrypt-хеш пароля с добавлением pepper
func HashPassword(password, pepper string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	if pepper == "" {
		return "", fmt.Errorf("password pepper is not configured")
	}

	// Добавляем pepper к паролю (секрет на стороне сервера, соль добавляет сам bcrypt)
	peppered := password + pepper

	hash, err := bcrypt.GenerateFromPassword([]byte(peppered), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %v", err)
	}

	return string(hash), nil
}

// VerifyPassword проверяет пароль против сохраненного хеша
func VerifyPassword(password, hash, pepper string) bool {
	if password == "" || hash == "" || pepper == "" {
		return false
	}

	peppered := password + pepper
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(peppered)) == nil
}

// GenerateHMAC создает HMAC для данных
func GenerateHMAC(data string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateHMAC проверяет HMAC
func ValidateHMAC(data string, mac string, key []byte) bool {
	expected := GenerateHMAC(data, key)
	return hmac.Equal([]byte(mac), []byte(expected))
}

// GenerateSecureToken генерирует безопасный токен
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

const referenceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateReferenceSuffix генерирует случайный алфавитно-цифровой суффикс
func GenerateReferenceSuffix(length int) string {
	var suffix []byte
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// rand.Reader недоступен только при деградации системы
			suffix = append(suffix, 'x')
			continue
		}
		suffix = append(suffix, referenceAlphabet[n.Int64()])
	}
	return string(suffix)
}
