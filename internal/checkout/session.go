package checkout

import (
	"time"
)

// Navigator receives the success signal of a payment.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is the checkout form of one visitor. Every change re-runs
// validation and card brand detection, mirroring what the form shows.
// It is not safe for concurrent use.
type Session struct {
	state State
	nav   Navigator
	now   func() time.Time
}

// NewSession opens a checkout form. nav is mandatory.
func NewSession(nav Navigator, opts ...Option) (*Session, error) {
	if nav == nil {
		return nil, ErrNoNavigator
	}
	s := &Session{
		state: InitialState(),
		nav:   nav,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sync()
	return s, nil
}

// State returns a copy of the current state.
func (s *Session) State() State {
	st := s.state
	st.Errors = s.state.Errors.clone()
	return st
}

// SetField formats raw for field and stores it.
func (s *Session) SetField(field Field, raw string) {
	s.dispatch(SetFieldValue{Field: field, Value: normalize(field, raw)})
	s.sync()
}

// SetPaymentMethod selects method. Switching to bitcoin clears card errors,
// switching to a card re-validates the fields already entered.
func (s *Session) SetPaymentMethod(method PaymentMethod) {
	s.dispatch(SetPaymentMethod{Method: method})
	s.sync()
}

// HandlePayment finalizes the form. Bitcoin always succeeds; a card succeeds
// only when validation passes. On success the navigator is sent to
// SuccessPath.
func (s *Session) HandlePayment() bool {
	if s.state.PaymentMethod == Bitcoin {
		s.nav.Navigate(SuccessPath)
		return true
	}
	errs := ValidateCardInfo(s.state.CardInfo, s.now())
	s.dispatch(SetErrors{Errors: errs})
	if len(errs) > 0 {
		return false
	}
	s.nav.Navigate(SuccessPath)
	return true
}

func (s *Session) dispatch(a Action) {
	s.state = Apply(s.state, a)
}

func (s *Session) sync() {
	if s.state.PaymentMethod == Bitcoin {
		s.dispatch(SetErrors{})
	} else {
		s.dispatch(SetErrors{Errors: ValidateCardInfo(s.state.CardInfo, s.now())})
	}
	if ct := CardTypeOf(s.state.CardInfo.Number); ct != s.state.CardType {
		s.dispatch(SetCardType{Type: ct})
	}
}
