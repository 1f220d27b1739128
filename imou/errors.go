package imou

import "fmt"

// AuthError indicates that the Imou cloud rejected the application
// credentials during login. It is fatal: retrying with the same
// credentials will not succeed.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected: %s (%s)", e.Message, e.Code)
}

// APIError is a business-logic failure reported inside a vendor envelope,
// for example a device being offline or an unsupported parameter. The HTTP
// exchange itself succeeded.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
}

// TransportError wraps a network, timeout or HTTP-level failure. Callers
// may retry these.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// InvalidResponseError indicates the vendor returned a payload that does
// not match the documented envelope or is missing an expected field.
type InvalidResponseError struct {
	Reason string
	Body   string
}

func (e *InvalidResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("invalid response: %s", e.Reason)
	}
	return fmt.Sprintf("invalid response: %s in %q", e.Reason, e.Body)
}
