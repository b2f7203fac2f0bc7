package notify

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"eventify/internal/config"
	"eventify/internal/logger"
)

// EmailSender delivers transactional mail over SMTP.
type EmailSender struct {
	cfg    config.EmailConfig
	logger *logger.Logger
}

func NewEmailSender(cfg config.EmailConfig, log *logger.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, logger: log}
}

func (e *EmailSender) SendRegistrationConfirmation(to, name, eventTitle string) error {
	body := fmt.Sprintf(
		"<h2>Hello %s!</h2><p>Your registration for <strong>%s</strong> is confirmed. See you there!</p>",
		name, eventTitle)
	return e.send(to, fmt.Sprintf("Registration confirmed: %s", eventTitle), body, nil)
}

func (e *EmailSender) SendPaymentConfirmation(to, name, eventTitle string, amount float64, eventDate string) error {
	body := fmt.Sprintf(
		"<h2>Hello %s!</h2><p>We received your payment of <strong>$%.2f</strong> for <strong>%s</strong> on %s.</p>",
		name, amount, eventTitle, eventDate)
	return e.send(to, fmt.Sprintf("Payment received: %s", eventTitle), body, nil)
}

func (e *EmailSender) SendQRCode(to, name, eventTitle, eventDate, eventLocation string, qrImage []byte) error {
	body := fmt.Sprintf(
		"<h2>Hello %s!</h2><p>Your ticket for <strong>%s</strong> (%s, %s) is attached. Show the QR code at the entrance.</p>",
		name, eventTitle, eventDate, eventLocation)
	return e.send(to, fmt.Sprintf("Your ticket for %s", eventTitle), body, qrImage)
}

// send builds a small MIME message, attaching the PNG when present.
func (e *EmailSender) send(to, subject, htmlBody string, attachment []byte) error {
	var msg strings.Builder
	boundary := "eventify-mail-boundary"

	msg.WriteString(fmt.Sprintf("From: %s\r\n", e.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if attachment == nil {
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		msg.WriteString(htmlBody)
	} else {
		msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary))
		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		msg.WriteString(htmlBody)
		msg.WriteString(fmt.Sprintf("\r\n--%s\r\n", boundary))
		msg.WriteString("Content-Type: image/png\r\n")
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString("Content-Disposition: attachment; filename=\"ticket-qr.png\"\r\n\r\n")
		msg.WriteString(base64.StdEncoding.EncodeToString(attachment))
		msg.WriteString(fmt.Sprintf("\r\n--%s--\r\n", boundary))
	}

	addr := e.cfg.SMTPHost + ":" + e.cfg.SMTPPort
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.SMTPHost)
	if err := smtp.SendMail(addr, auth, e.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	e.logger.Info("EMAIL", fmt.Sprintf("Sent %q to %s", subject, to))
	return nil
}
