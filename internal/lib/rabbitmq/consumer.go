package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
)

// ErrUnprocessable помечает сообщение, которое не удастся обработать и при повторной доставке.
// Такие сообщения отклоняются без возврата в очередь.
var ErrUnprocessable = errors.New("unprocessable message")

// Consumer часть *amqp.Channel, нужная для чтения очереди.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// ConsumeMessages читает очередь и обрабатывает не более concurrency сообщений одновременно.
// Успешно обработанные сообщения подтверждаются, при ошибке сообщение возвращается в очередь,
// кроме ошибок ErrUnprocessable.
// Возвращает управление, когда закрыт канал доставки или отменён ctx и завершены все обработчики.
func ConsumeMessages(ctx context.Context, ch Consumer, queueName string, concurrency int,
	handler func([]byte) error, log *slog.Logger) error {
	const op = "rabbitmq.ConsumeMessages"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return nil
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					wg.Done()
				}()
				if err := handler(d.Body); err != nil {
					if errors.Is(err, ErrUnprocessable) {
						log.Error("dropping unprocessable message", slog.Uint64("delivery_tag", d.DeliveryTag), sl.Err(err))
						if rejectErr := d.Reject(false); rejectErr != nil {
							log.Error("failed to reject message", sl.Err(rejectErr))
						}
						return
					}
					log.Error("failed to handle message", sl.Err(err))
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		case <-ctx.Done():
			return nil
		}
	}
}
