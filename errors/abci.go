package errors

import (
	"fmt"
	"reflect"
)

const (
	// SuccessABCICode is the code of a successfully processed transaction.
	SuccessABCICode = 0

	// Errors that are not registered in this package are reported with the
	// internal code and, outside of debug mode, a generic log.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and the log of an ABCI response for given
// error. A nil error is a success.
//
// Registered errors expose their message. Any other error is internal and
// its message is replaced with "internal error", so that a failing store or
// codec does not leak into a transaction result. In debug mode every
// message is returned together with the place the error was created at,
// for example "cannot read file: EOF [store.go:42]".
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the first error in the cause chain that
// provides one, or the internal code.
func abciCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessABCICode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			return internalABCICode
		}
		err = c.Cause()
	}
}

// errIsNil returns true if value represented by the given error is nil.
// A typed nil pointer, like (*Error)(nil), is nil as well.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
