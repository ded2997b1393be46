package translator

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable covers transport failures: DNS, refused or reset
	// connections, timeouts.
	ErrProviderUnavailable = errors.New("translation provider unavailable")
	// ErrProviderRejected means the provider answered with a non-success status.
	ErrProviderRejected = errors.New("translation provider rejected request")
	// ErrMalformedResponse means the body did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed translation response")
	// ErrAllProvidersExhausted is the only failure surfaced by the fallback chain.
	ErrAllProvidersExhausted = errors.New("all translation providers exhausted")
)

// ProviderError is the failure of a single provider attempt.
type ProviderError struct {
	Service    string
	Kind       error
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Service, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(service string, err error) *ProviderError {
	return &ProviderError{Service: service, Kind: ErrProviderUnavailable, Err: err}
}

func rejected(service string, status int, err error) *ProviderError {
	return &ProviderError{Service: service, Kind: ErrProviderRejected, StatusCode: status, Err: err}
}

func malformed(service string, err error) *ProviderError {
	return &ProviderError{Service: service, Kind: ErrMalformedResponse, Err: err}
}

// fail records err on result so the attempt still carries its reason.
func fail(result *ServiceResult, err *ProviderError) (*ServiceResult, error) {
	result.Error = err.Error()
	return result, err
}
