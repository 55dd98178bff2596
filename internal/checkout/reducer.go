package checkout

// Action is a checkout state transition. The set of actions is closed: each
// one carries its own reduction, so Apply needs no fallback branch.
type Action interface {
	reduce(State) State
}

// SetPaymentMethod switches the selected payment method.
type SetPaymentMethod struct {
	Method PaymentMethod
}

// SetFieldValue stores an already formatted card field.
type SetFieldValue struct {
	Field Field
	Value string
}

// SetErrors replaces the validation errors.
type SetErrors struct {
	Errors ValidationErrors
}

// SetCardType records the detected card brand.
type SetCardType struct {
	Type CardType
}

func (a SetPaymentMethod) reduce(s State) State {
	s.PaymentMethod = a.Method
	return s
}

func (a SetFieldValue) reduce(s State) State {
	s.CardInfo = s.CardInfo.with(a.Field, a.Value)
	return s
}

func (a SetErrors) reduce(s State) State {
	if a.Errors == nil {
		s.Errors = ValidationErrors{}
	} else {
		s.Errors = a.Errors.clone()
	}
	return s
}

func (a SetCardType) reduce(s State) State {
	s.CardType = a.Type
	return s
}

// Apply returns the state that follows s under a. s is left untouched.
func Apply(s State, a Action) State {
	s.Errors = s.Errors.clone()
	return a.reduce(s)
}
