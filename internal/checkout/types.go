// Package checkout validates card details and drives the checkout form state.
package checkout

import (
	"github.com/go-faster/errors"
)

// SuccessPath is where a successful payment navigates to.
const SuccessPath = "/checkout-success"

// PaymentMethod is the selected way to pay.
type PaymentMethod string

const (
	Visa       PaymentMethod = "visa"
	Mastercard PaymentMethod = "mastercard"
	Bitcoin    PaymentMethod = "bitcoin"
)

// ParsePaymentMethod accepts the three supported methods.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case Visa, Mastercard, Bitcoin:
		return m, nil
	}
	return "", errors.Wrapf(ErrUnknownPaymentMethod, "%q", s)
}

// CardType is the brand detected from the leading digit of the card number.
type CardType string

const (
	CardTypeNone       CardType = ""
	CardTypeVisa       CardType = "visa"
	CardTypeMastercard CardType = "mastercard"
)

// Field names a card form input.
type Field string

const (
	FieldNumber Field = "number"
	FieldName   Field = "name"
	FieldExpiry Field = "expiry"
	FieldCVC    Field = "cvc"
)

// ParseField accepts the four card form inputs.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldNumber, FieldName, FieldExpiry, FieldCVC:
		return f, nil
	}
	return "", errors.Wrapf(ErrUnknownField, "%q", s)
}

var (
	ErrUnknownField         = errors.New("unknown card field")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrNoNavigator          = errors.New("checkout session requires a navigator")
)

// CardInfo holds the card form as entered, after formatting.
type CardInfo struct {
	Number string `json:"number"` // "#### #### #### ####"
	Name   string `json:"name"`
	Expiry string `json:"expiry"` // "MM/YY"
	CVC    string `json:"cvc"`
}

func (c CardInfo) with(field Field, value string) CardInfo {
	switch field {
	case FieldNumber:
		c.Number = value
	case FieldName:
		c.Name = value
	case FieldExpiry:
		c.Expiry = value
	case FieldCVC:
		c.CVC = value
	}
	return c
}

// ValidationErrors maps invalid fields to a message. A missing key means the
// field is valid.
type ValidationErrors map[Field]string

func (e ValidationErrors) clone() ValidationErrors {
	out := make(ValidationErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// State is the whole checkout form.
type State struct {
	PaymentMethod PaymentMethod    `json:"payment_method"`
	CardInfo      CardInfo         `json:"card_info"`
	Errors        ValidationErrors `json:"errors"`
	CardType      CardType         `json:"card_type"`
}

// InitialState is the state of a freshly opened checkout page.
func InitialState() State {
	return State{
		PaymentMethod: Visa,
		Errors:        ValidationErrors{},
		CardType:      CardTypeNone,
	}
}

// PaymentDisabled reports whether the pay action should be offered. Bitcoin is
// always payable; cards need every field filled and no errors.
func (s State) PaymentDisabled() bool {
	if s.PaymentMethod == Bitcoin {
		return false
	}
	for _, msg := range s.Errors {
		if msg != "" {
			return true
		}
	}
	c := s.CardInfo
	return c.Number == "" || c.Name == "" || c.Expiry == "" || c.CVC == ""
}
