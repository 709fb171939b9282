package internal

import (
	"context"
	"duitku/entity"
	"duitku/services"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const notificationHandlerTimeout = 30 * time.Second

// Payments relays merchant requests to the Duitku gateway and verifies its
// notifications. Credentials are fixed at construction.
type Payments struct {
	urls     entity.MerchantUrls
	invoices *InvoiceBuilder
	statuses *StatusQueryBuilder
	verifier *NotificationVerifier
	gateway  *GatewayClient
	handler  services.NotificationHandler
	logger   services.LogHandler
	metrics  *Metrics
	running  sync.WaitGroup
}

func NewPayments(credentials entity.Credentials, urls entity.MerchantUrls, gateway *GatewayClient) *Payments {
	return &Payments{
		urls:     urls,
		invoices: NewInvoiceBuilder(credentials, urls),
		statuses: NewStatusQueryBuilder(credentials),
		verifier: NewNotificationVerifier(credentials),
		gateway:  gateway,
		logger:   NewLogger("payments", false, nil),
	}
}

func (p *Payments) SetLogger(logger services.LogHandler) {
	p.logger = logger
}

func (p *Payments) SetMetrics(metrics *Metrics) {
	p.metrics = metrics
}

// SetNotificationHandler registers the hook run for accepted notifications.
func (p *Payments) SetNotificationHandler(handler services.NotificationHandler) {
	p.handler = handler
}

// CreateInvoice signs the order and posts it to the gateway's inquiry endpoint.
func (p *Payments) CreateInvoice(ctx context.Context, order *entity.InvoiceOrder) (*entity.InvoiceResult, error) {
	request, err := p.invoices.Build(order)
	if err != nil {
		return nil, err
	}
	p.logger.Info(fmt.Sprintf("create invoice: order %s; amount %d; method %s; customer %s",
		request.MerchantOrderId, request.PaymentAmount, request.PaymentMethod, secret(request.Email)))

	body, err := p.gateway.Post(ctx, "inquiry", inquiryPath, request)
	if err != nil {
		return nil, fmt.Errorf("create invoice %s: %w", request.MerchantOrderId, err)
	}
	p.logger.Debug(fmt.Sprintf("inquiry response: %s", string(body)))

	var response entity.InvoiceResponse
	if err = json.Unmarshal(body, &response); err != nil {
		p.logger.Warn(fmt.Sprintf("unrecognized inquiry response: %s", string(body)))
	} else {
		p.logger.Info(fmt.Sprintf("invoice %s created: reference %s; status %s", request.MerchantOrderId, response.Reference, response.StatusCode))
	}

	return &entity.InvoiceResult{
		Success:     true,
		Message:     "Invoice created successfully",
		Data:        rawJSON(body),
		PaymentUrl:  response.PaymentUrl,
		Reference:   response.Reference,
		CallbackUrl: p.urls.Callback,
	}, nil
}

// Notify verifies a gateway notification. Accepted notifications are passed
// to the notification handler in the background; the returned outcome alone
// decides the acknowledgement.
func (p *Payments) Notify(ctx context.Context, notification *entity.Notification) *entity.Outcome {
	outcome := p.verifier.Verify(notification)
	p.metrics.RecordNotification(outcome)

	if !outcome.Accepted {
		if notification != nil {
			p.logger.Warn(fmt.Sprintf("notification rejected: %s; order %s", outcome.Reason, notification.MerchantOrderId))
		} else {
			p.logger.Warn(fmt.Sprintf("notification rejected: %s", outcome.Reason))
		}
		return outcome
	}

	p.logger.Info(fmt.Sprintf("notification: order %s; amount %s; result %s (%s); reference %s; payment code %s",
		notification.MerchantOrderId, notification.Amount, outcome.ResultCode, outcome.Status, notification.Reference, notification.PaymentCode))

	if p.handler != nil {
		p.running.Add(1)
		go p.handleNotificationWithRecovery(context.WithoutCancel(ctx), p.handler, notification, outcome)
	}
	return outcome
}

// Wait blocks until running notification handlers return or ctx expires.
func (p *Payments) Wait(ctx context.Context) error {
	return waitFor(ctx, &p.running)
}

// CheckTransaction asks the gateway for the status of an order and returns its raw answer.
func (p *Payments) CheckTransaction(ctx context.Context, merchantOrderId string) (json.RawMessage, error) {
	query, err := p.statuses.Build(merchantOrderId)
	if err != nil {
		return nil, err
	}
	p.logger.Info(fmt.Sprintf("check transaction: order %s", merchantOrderId))

	body, err := p.gateway.Post(ctx, "status", transactionStatusPath, query)
	if err != nil {
		return nil, fmt.Errorf("check transaction %s: %w", merchantOrderId, err)
	}

	var status entity.TransactionStatus
	if err = json.Unmarshal(body, &status); err == nil {
		p.logger.Info(fmt.Sprintf("transaction %s: status %s %s; amount %s", merchantOrderId, status.StatusCode, status.StatusMessage, status.Amount))
	} else {
		p.logger.Warn(fmt.Sprintf("unrecognized status response: %s", string(body)))
	}

	return rawJSON(body), nil
}

// handleNotificationWithRecovery runs the handler with a timeout and panic recovery.
func (p *Payments) handleNotificationWithRecovery(parentCtx context.Context, handler services.NotificationHandler, notification *entity.Notification, outcome *entity.Outcome) {
	defer p.running.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in notification handler", fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(parentCtx, notificationHandlerTimeout)
	defer cancel()

	if err := handler.HandleNotification(ctx, notification, outcome); err != nil {
		p.logger.Error(fmt.Sprintf("handle notification for order %s", notification.MerchantOrderId), err)
	}
}

func secret(some string) string {
	if len(some) > 5 {
		return fmt.Sprintf("%s***", some[0:5])
	}
	if some == "" {
		return "?"
	}
	return "***"
}
