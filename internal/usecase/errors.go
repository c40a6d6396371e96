package usecase

import "errors"

// ErrorKind classifies the client-facing failures of the code flows.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindUnknownCategory
	KindCaptchaFailed
	KindResendTooSoon
	KindInvalidCode
	KindUsernameNotFound
	KindTransport
)

// FlowError is a classified failure carrying the localized message
// configured for its kind. Transport failures additionally wrap the
// provider error so it stays distinguishable as a dependency failure.
type FlowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func newFlowError(kind ErrorKind, message string) *FlowError {
	return &FlowError{Kind: kind, Message: message}
}

// AsFlowError extracts a FlowError from an error chain.
func AsFlowError(err error) (*FlowError, bool) {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
