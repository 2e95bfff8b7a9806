package payments

import "kumpul/src/types"

// GatewayAction is one entry of the gateway response's actions list.
type GatewayAction struct {
	Type       string                 `json:"type,omitempty"`
	Descriptor types.ActionDescriptor `json:"descriptor"`
	Value      string                 `json:"value"`
}

// ActionFields are the channel display fields parsed out of a gateway
// response. Fields a channel does not provide stay nil.
type ActionFields struct {
	PaymentURL           *string `json:"payment_url,omitempty"`
	PaymentCode          *string `json:"payment_code,omitempty"`
	QRString             *string `json:"qr_string,omitempty"`
	VirtualAccountNumber *string `json:"virtual_account_number,omitempty"`
}

// ParseActions maps each action descriptor to its named field. Unknown
// descriptors are skipped; missing actions are not an error since some
// channels legitimately omit them.
func ParseActions(actions []GatewayAction) *ActionFields {
	fields := &ActionFields{}
	for i := range actions {
		action := actions[i]
		switch action.Descriptor {
		case types.ACTION_WEB_URL:
			fields.PaymentURL = &action.Value
		case types.ACTION_PAYMENT_CODE:
			fields.PaymentCode = &action.Value
		case types.ACTION_QR_STRING:
			fields.QRString = &action.Value
		case types.ACTION_VIRTUAL_ACCOUNT_NUMBER:
			fields.VirtualAccountNumber = &action.Value
		}
	}
	return fields
}
