package kafka

import (
	"time"

	"github.com/syphaxalili/b2connect-store-sub001/model"
)

// OrderNotifier adapts the producer to the checkout orchestrator's
// notifier seam.
type OrderNotifier struct {
	Producer *Producer
}

func (n *OrderNotifier) OrderCreated(order *model.Order) {
	event := map[string]interface{}{
		"event_type": "order.created",
		"data": map[string]interface{}{
			"order_id":     order.ID,
			"user_id":      order.UserID,
			"total_amount": order.TotalAmount.String(),
			"status":       string(order.Status),
			"created_at":   order.CreatedAt.Format(time.RFC3339),
		},
	}
	n.Producer.PublishOrderCreatedEvent(event)
}

func (n *OrderNotifier) StatusChanged(order *model.Order) {
	event := map[string]interface{}{
		"event_type": "order.status.changed",
		"data": map[string]interface{}{
			"order_id":   order.ID,
			"user_id":    order.UserID,
			"status":     string(order.Status),
			"changed_at": time.Now().Format(time.RFC3339),
		},
	}
	n.Producer.PublishOrderStatusChangedEvent(event)
}
