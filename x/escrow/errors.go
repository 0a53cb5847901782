package escrow

import (
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

var (
	ErrInvalidAmount         = errors.Register(1000, "invalid amount")
	ErrBuyerCannotBeSeller   = errors.Register(1001, "buyer cannot be seller")
	ErrInvalidBuyerAddress   = errors.Register(1002, "invalid buyer address")
	ErrInvalidArbiterAddress = errors.Register(1003, "invalid arbiter address")
	ErrInvalidBuyer          = errors.Register(1004, "invalid buyer")
	ErrInvalidEscrowState    = errors.Register(1005, "invalid escrow state")
	ErrInvalidTokenMint      = errors.Register(1006, "invalid token mint")
	ErrTermsChanged          = errors.Register(1007, "terms changed")
	ErrInsufficientFunds     = errors.Register(1008, "insufficient funds")
	ErrInvalidSeller         = errors.Register(1009, "invalid seller")
	ErrEscrowNotShipped      = errors.Register(1010, "escrow not shipped")
	ErrWithdrawTooEarly      = errors.Register(1011, "withdraw too early")
	ErrInvalidDuration       = errors.Register(1012, "invalid duration")
	ErrInvalidVaultBalance   = errors.Register(1013, "invalid vault balance")
)

// Class groups escrow errors by the kind of guard that failed.
type Class string

const (
	ClassNone          Class = ""
	ClassInput         Class = "input"
	ClassAuthorization Class = "authorization"
	ClassState         Class = "state"
	ClassConsistency   Class = "consistency"
	ClassResource      Class = "resource"
	ClassTiming        Class = "timing"
)

var classes = []struct {
	kind  *errors.Error
	class Class
}{
	{ErrInvalidAmount, ClassInput},
	{ErrBuyerCannotBeSeller, ClassInput},
	{ErrInvalidBuyerAddress, ClassInput},
	{ErrInvalidArbiterAddress, ClassInput},
	{ErrInvalidDuration, ClassInput},
	{ErrInvalidBuyer, ClassAuthorization},
	{ErrInvalidSeller, ClassAuthorization},
	{ErrInvalidEscrowState, ClassState},
	{ErrEscrowNotShipped, ClassState},
	{ErrInvalidTokenMint, ClassConsistency},
	{ErrTermsChanged, ClassConsistency},
	{ErrInvalidVaultBalance, ClassConsistency},
	{ErrInsufficientFunds, ClassResource},
	{ErrWithdrawTooEarly, ClassTiming},
}

// Classify returns the class of given escrow error. ClassNone is returned
// for nil and for errors that do not originate from this package.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	for _, c := range classes {
		if c.kind.Is(err) {
			return c.class
		}
	}
	return ClassNone
}

// tooEarlyError is a withdraw timing failure that carries the earliest time
// the withdraw can succeed.
type tooEarlyError struct {
	eligible escrowd.UnixTime
	parent   error
}

func errTooEarly(eligible escrowd.UnixTime) error {
	return &tooEarlyError{
		eligible: eligible,
		parent:   errors.Wrapf(ErrWithdrawTooEarly, "eligible at %s", eligible),
	}
}

func (e *tooEarlyError) Error() string {
	return e.parent.Error()
}

func (e *tooEarlyError) Cause() error {
	return e.parent
}

// RetryAfter returns the earliest time a withdraw that failed with given
// error can succeed. False is returned if the error is not a timing failure.
func RetryAfter(err error) (time.Time, bool) {
	for err != nil {
		if e, ok := err.(*tooEarlyError); ok {
			return e.eligible.Time(), true
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			return time.Time{}, false
		}
		err = c.Cause()
	}
	return time.Time{}, false
}
