package kafka

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/syphaxalili/b2connect-store-sub001/mailer"
	"github.com/syphaxalili/b2connect-store-sub001/model"
)

type OrderCreatedEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		OrderID     uint   `json:"order_id"`
		UserID      *uint  `json:"user_id"`
		TotalAmount string `json:"total_amount"`
		Status      string `json:"status"`
		CreatedAt   string `json:"created_at"`
	} `json:"data"`
}

// OrderCreatedHandler mails an order confirmation. Guest orders carry
// no user id and are skipped.
func OrderCreatedHandler(db *gorm.DB, m *mailer.Mailer) func([]byte) {
	return func(msg []byte) {
		var event OrderCreatedEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			log.Printf("invalid order.created payload: %v", err)
			return
		}
		if event.Data.UserID == nil {
			return
		}

		var user model.User
		if err := db.First(&user, *event.Data.UserID).Error; err != nil {
			log.Printf("order.created: user %d not found: %v", *event.Data.UserID, err)
			return
		}

		body := fmt.Sprintf(
			"Thanks for your order!\n\nOrder #%d\nTotal: %s\nStatus: %s\n",
			event.Data.OrderID, event.Data.TotalAmount, event.Data.Status)

		if err := m.Send(user.Email, fmt.Sprintf("Order #%d confirmed", event.Data.OrderID), body); err != nil {
			log.Printf("failed to send order confirmation for order %d: %v", event.Data.OrderID, err)
			return
		}
		log.Printf("order confirmation sent for order %d", event.Data.OrderID)
	}
}

type StatusChangedEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		OrderID uint   `json:"order_id"`
		UserID  *uint  `json:"user_id"`
		Status  string `json:"status"`
	} `json:"data"`
}

func StatusChangedHandler(db *gorm.DB, m *mailer.Mailer) func([]byte) {
	return func(msg []byte) {
		var event StatusChangedEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			log.Printf("invalid order.status.changed payload: %v", err)
			return
		}
		if event.Data.UserID == nil {
			return
		}

		var user model.User
		if err := db.First(&user, *event.Data.UserID).Error; err != nil {
			log.Printf("order.status.changed: user %d not found: %v", *event.Data.UserID, err)
			return
		}

		body := fmt.Sprintf("Your order #%d is now %s.\n", event.Data.OrderID, event.Data.Status)
		if err := m.Send(user.Email, fmt.Sprintf("Order #%d update", event.Data.OrderID), body); err != nil {
			log.Printf("failed to send status update for order %d: %v", event.Data.OrderID, err)
		}
	}
}

type PasswordResetEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		Email string `json:"email"`
		Token string `json:"token"`
	} `json:"data"`
}

func PasswordResetHandler(m *mailer.Mailer) func([]byte) {
	return func(msg []byte) {
		var event PasswordResetEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			log.Printf("invalid user.password.reset payload: %v", err)
			return
		}

		body := fmt.Sprintf("Use this token to reset your password: %s\nIt expires in one hour.\n", event.Data.Token)
		if err := m.Send(event.Data.Email, "Password reset", body); err != nil {
			log.Printf("failed to send password reset mail to %s: %v", event.Data.Email, err)
		}
	}
}
