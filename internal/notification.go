package internal

import "duitku/entity"

// NotificationVerifier authenticates and classifies gateway notifications.
// It holds no mutable state, so verifying the same notification twice gives the same outcome.
type NotificationVerifier struct {
	credentials entity.Credentials
}

func NewNotificationVerifier(credentials entity.Credentials) *NotificationVerifier {
	return &NotificationVerifier{credentials: credentials}
}

func (v *NotificationVerifier) Verify(notification *entity.Notification) *entity.Outcome {
	if notification == nil ||
		notification.MerchantCode == "" ||
		notification.Amount == "" ||
		notification.MerchantOrderId == "" ||
		notification.Signature == "" {
		return entity.Rejected(entity.ReasonMissingParameter)
	}

	// the amount is signed exactly as the gateway sent it
	fields := []string{notification.MerchantCode, notification.Amount.String(), notification.MerchantOrderId}
	if !VerifySignature(PurposeNotificationVerify, fields, v.credentials.ApiKey, notification.Signature) {
		return entity.Rejected(entity.ReasonInvalidSignature)
	}

	switch notification.ResultCode {
	case entity.ResultCodeSuccess:
		return entity.Accepted(entity.PaymentPaid, notification.ResultCode.String())
	case entity.ResultCodeFailed:
		return entity.Accepted(entity.PaymentFailed, notification.ResultCode.String())
	default:
		return entity.Accepted(entity.PaymentPending, notification.ResultCode.String())
	}
}
