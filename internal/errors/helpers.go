package errors

import (
	"errors"
)

// Is is errors.Is, here so callers need one errors import
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode returns the code of the outermost *Error in err's chain. Plain
// errors are Internal.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// GetMeta returns the metadata of the outermost *Error in err's chain
func GetMeta(err error) map[string]any {
	var e *Error
	if err != nil && errors.As(err, &e) {
		return e.Meta
	}
	return nil
}

// IsNotFound reports a NotFound code
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

// IsInvalidArgument reports an InvalidArgument code
func IsInvalidArgument(err error) bool {
	return GetCode(err) == CodeInvalidArgument
}

// IsUnauthenticated reports a rejected API key
func IsUnauthenticated(err error) bool {
	return GetCode(err) == CodeUnauthenticated
}

// IsResourceExhausted reports a provider rate limit or quota failure
func IsResourceExhausted(err error) bool {
	return GetCode(err) == CodeResourceExhausted
}

// IsDataLoss reports a stored record that could not be decoded
func IsDataLoss(err error) bool {
	return GetCode(err) == CodeDataLoss
}
