package services

import (
	"context"
	"duitku/entity"
	"encoding/json"
)

type Payments interface {
	CreateInvoice(ctx context.Context, order *entity.InvoiceOrder) (*entity.InvoiceResult, error)
	Notify(ctx context.Context, notification *entity.Notification) *entity.Outcome
	CheckTransaction(ctx context.Context, merchantOrderId string) (json.RawMessage, error)
}

// NotificationHandler receives notifications whose signature checked out.
// It runs after the gateway has been acknowledged; its error does not change the acknowledgement.
type NotificationHandler interface {
	HandleNotification(ctx context.Context, notification *entity.Notification, outcome *entity.Outcome) error
}
