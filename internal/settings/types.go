package settings

import (
	"errors"

	"github.com/mauv0809/slot-matcher/internal/config"
)

var (
	ErrUnknownKey   = errors.New("unknown setting")
	ErrInvalidValue = errors.New("invalid setting value")
)

const (
	KeyAdminPasswordHash  = "admin_password_hash"
	KeyPaymentLinkFirst   = "payment_link_first"
	KeyPaymentLinkFinal   = "payment_link_final"
	KeyPaymentAmountFirst = "payment_amount_first"
	KeyPaymentAmountFinal = "payment_amount_final"
	// TemplatePrefix keys carry a template id, e.g. template_final_payment_request.
	TemplatePrefix = "template_"
)

// SystemConfig is the effective runtime configuration: environment defaults
// overridden by admin settings rows.
type SystemConfig struct {
	PaymentLinkFirst   string                `json:"payment_link_first"`
	PaymentLinkFinal   string                `json:"payment_link_final"`
	PaymentAmountFirst int                   `json:"payment_amount_first"`
	PaymentAmountFinal int                   `json:"payment_amount_final"`
	Templates          config.TemplateConfig `json:"templates"`
	AdminPasswordHash  string                `json:"-"`
}

// Setting is one stored row.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
