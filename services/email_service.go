package services

import (
	"fmt"
	"time"

	"horizonBank/config"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From())
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// From возвращает адрес отправителя
func (s *EmailService) From() string {
	return s.from
}

// SendTransactionInitiated отправляет уведомление о созданном платеже
func (s *EmailService) SendTransactionInitiated(to, transactionID string, amount decimal.Decimal, currency string) error {
	subject := "Payment submitted for verification"
	body := fmt.Sprintf(`
		<h2>International payment received</h2>
		<p>Transaction: %s</p>
		<p>Amount: %s %s</p>
		<p>Status: pending employee verification</p>
		<p>Date: %s</p>
	`, transactionID, amount.StringFixed(2), currency, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}

// SendTransactionStatusChanged отправляет уведомление об изменении статуса платежа
func (s *EmailService) SendTransactionStatusChanged(to, transactionID, status, reason string) error {
	subject := "Payment status update"
	body := fmt.Sprintf(`
		<h2>Payment status update</h2>
		<p>Transaction: %s</p>
		<p>New status: %s</p>
	`, transactionID, status)

	if reason != "" {
		body += fmt.Sprintf("<p>Reason: %s</p>", reason)
	}

	return s.SendEmail(to, subject, body)
}

// SendTransactionCompleted отправляет уведомление об отправке платежа в SWIFT
func (s *EmailService) SendTransactionCompleted(to, transactionID, swiftReference string) error {
	subject := "Payment submitted to SWIFT"
	body := fmt.Sprintf(`
		<h2>Payment completed</h2>
		<p>Transaction: %s</p>
		<p>SWIFT reference: %s</p>
		<p>Date: %s</p>
	`, transactionID, swiftReference, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}
