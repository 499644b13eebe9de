package rabbitmq

// NotificationsExchange exchange для всех уведомлений биллинга.
const NotificationsExchange = "notifications"

const (
	// RoutingKeyReceipt квитанция об успешной оплате.
	RoutingKeyReceipt = "receipt"
	// RoutingKeyExpiring подписка заканчивается завтра.
	RoutingKeyExpiring = "expiring"
)

const (
	// QueueReceipt очередь квитанций.
	QueueReceipt = "notification.receipt"
	// QueueExpiring очередь напоминаний о продлении.
	QueueExpiring = "notification.expiring"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди, которые слушает notification-sender.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueReceipt, RoutingKey: RoutingKeyReceipt},
		{QueueName: QueueExpiring, RoutingKey: RoutingKeyExpiring},
	}
}
