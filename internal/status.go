package internal

import "duitku/entity"

// StatusQueryBuilder assembles signed transaction status requests.
type StatusQueryBuilder struct {
	credentials entity.Credentials
	sign        SignFunc
}

func NewStatusQueryBuilder(credentials entity.Credentials) *StatusQueryBuilder {
	return &StatusQueryBuilder{
		credentials: credentials,
		sign:        ComputeSignature,
	}
}

func (b *StatusQueryBuilder) Build(merchantOrderId string) (*entity.StatusQuery, error) {
	if merchantOrderId == "" {
		return nil, &ValidationError{Message: "merchantOrderId wajib diisi"}
	}
	signature, err := b.sign(PurposeStatusQuery, []string{b.credentials.MerchantCode, merchantOrderId}, b.credentials.ApiKey)
	if err != nil {
		return nil, err
	}
	return &entity.StatusQuery{
		MerchantCode:    b.credentials.MerchantCode,
		MerchantOrderId: merchantOrderId,
		Signature:       signature,
	}, nil
}
