package internal

import (
	"context"
	"duitku/entity"
	"duitku/services"
	"fmt"
)

// LogNotificationHandler is the default fulfillment hook: it only records the result.
type LogNotificationHandler struct {
	logger services.LogHandler
}

func NewLogNotificationHandler(logger services.LogHandler) *LogNotificationHandler {
	return &LogNotificationHandler{logger: logger}
}

func (h *LogNotificationHandler) HandleNotification(_ context.Context, notification *entity.Notification, outcome *entity.Outcome) error {
	switch outcome.Status {
	case entity.PaymentPaid:
		h.logger.Info(fmt.Sprintf("order %s paid: amount %s; reference %s; payment code %s",
			notification.MerchantOrderId, notification.Amount, notification.Reference, notification.PaymentCode))
	case entity.PaymentFailed:
		h.logger.Warn(fmt.Sprintf("order %s payment failed; reference %s", notification.MerchantOrderId, notification.Reference))
	default:
		h.logger.Info(fmt.Sprintf("order %s payment pending: result code %s", notification.MerchantOrderId, outcome.ResultCode))
	}
	return nil
}
