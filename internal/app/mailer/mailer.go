// Package mailer воркер, отправляющий письма с кодами подтверждения из очереди RabbitMQ.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/yamdb/internal/config"
	"github.com/magabrotheeeer/yamdb/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/lib/smtp"
	mailservice "github.com/magabrotheeeer/yamdb/internal/services/mailer"
)

const workerConcurrency = 10

type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *mailservice.SMTPSender
	logger *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.mailer.New"
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.Delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.MailExchange, rabbitmq.GetMailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:   conn,
		ch:     ch,
		sender: mailservice.NewSMTPSender(transport, cfg.Mail.From, logger),
		logger: logger,
	}, nil
}

// Run обрабатывает очередь подтверждений до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("consuming queue", slog.String("queue", rabbitmq.ConfirmationQueue.QueueName))
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.ConfirmationQueue.QueueName, workerConcurrency,
		a.sender.HandleConfirmation, a.logger)

	a.logger.Info("mailer shutting down gracefully")
	if cerr := a.ch.Close(); cerr != nil {
		a.logger.Error("failed to close channel", sl.Err(cerr))
	}
	if cerr := a.conn.Close(); cerr != nil {
		a.logger.Error("failed to close connection", sl.Err(cerr))
	}
	return err
}
