package rabbitmq

// MailExchange обменник для почтовых заданий.
const MailExchange = "mail"

// QueueConfig очередь и ключ маршрутизации, с которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// ConfirmationQueue очередь писем с кодами подтверждения.
var ConfirmationQueue = QueueConfig{QueueName: "mail.confirmation", RoutingKey: "confirmation"}

// GetMailQueues возвращает все очереди почтового обменника.
func GetMailQueues() []QueueConfig {
	return []QueueConfig{
		ConfirmationQueue,
	}
}
