// Package mailer доставляет письма с кодами подтверждения: напрямую по SMTP,
// через очередь RabbitMQ для отдельного воркера или в лог при локальной разработке.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/magabrotheeeer/yamdb/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/lib/smtp"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// ConfirmationSubject тема письма с кодом.
const ConfirmationSubject = "Your confirmation code"

// ComposeConfirmation собирает письмо с кодом подтверждения.
func ComposeConfirmation(from string, mail models.ConfirmationMail) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", mail.Email)
	m.SetHeader("Subject", ConfirmationSubject)
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello, %s!\n\nYour confirmation code: %s\n\nUse it together with your username to obtain an access token.",
		mail.Username, mail.Code))
	return m
}

// SMTPSender отправляет письма через SMTP транспорт.
type SMTPSender struct {
	transport smtp.TransportInterface
	from      string
	log       *slog.Logger
}

// NewSMTPSender создает новый экземпляр SMTPSender.
func NewSMTPSender(transport smtp.TransportInterface, from string, log *slog.Logger) *SMTPSender {
	return &SMTPSender{transport: transport, from: from, log: log}
}

// SendConfirmation отправляет письмо с кодом подтверждения.
func (s *SMTPSender) SendConfirmation(_ context.Context, mail models.ConfirmationMail) error {
	const op = "services.mailer.SendConfirmation"
	if err := s.send(mail.Email, ComposeConfirmation(s.from, mail)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent successfully", slog.String("to", mail.Email))
	return nil
}

// HandleConfirmation обрабатывает сообщение из очереди писем.
func (s *SMTPSender) HandleConfirmation(body []byte) error {
	var mail models.ConfirmationMail
	if err := json.Unmarshal(body, &mail); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w: %w", rabbitmq.ErrUnprocessable, err)
	}
	if mail.Email == "" || mail.Code == "" {
		return fmt.Errorf("incomplete confirmation message for %q: %w", mail.Username, rabbitmq.ErrUnprocessable)
	}
	return s.SendConfirmation(context.Background(), mail)
}

func (s *SMTPSender) send(to string, m *gomail.Message) error {
	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(s.from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.from), sl.Err(err))
		return err
	}
	if err = client.Rcpt(to); err != nil {
		s.log.Error("failed to set RCPT TO", slog.String("recipient", to), sl.Err(err))
		return err
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = m.WriteTo(wc); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		_ = wc.Close()
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}
	return nil
}

// QueuePublisher ставит письма в очередь для воркера cmd/mailer.
type QueuePublisher struct {
	ch  rabbitmq.Publisher
	log *slog.Logger
}

// NewQueuePublisher создает новый экземпляр QueuePublisher.
func NewQueuePublisher(ch rabbitmq.Publisher, log *slog.Logger) *QueuePublisher {
	return &QueuePublisher{ch: ch, log: log}
}

// SendConfirmation публикует задание на отправку письма.
func (p *QueuePublisher) SendConfirmation(_ context.Context, mail models.ConfirmationMail) error {
	const op = "services.mailer.QueuePublisher.SendConfirmation"
	if err := rabbitmq.PublishMessage(p.ch, rabbitmq.MailExchange, rabbitmq.ConfirmationQueue.RoutingKey, mail); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.log.Info("confirmation mail queued", slog.String("username", mail.Username))
	return nil
}

// LogSender пишет письмо в лог вместо отправки.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender создает новый экземпляр LogSender.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

// SendConfirmation логирует код подтверждения.
func (l *LogSender) SendConfirmation(_ context.Context, mail models.ConfirmationMail) error {
	l.log.Info("confirmation code issued",
		slog.String("username", mail.Username),
		slog.String("email", mail.Email),
		slog.String("code", mail.Code),
	)
	return nil
}
