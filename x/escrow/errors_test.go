package escrow

import (
	"fmt"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		Err  error
		Want Class
	}{
		"nil":               {Err: nil, Want: ClassNone},
		"foreign error":     {Err: fmt.Errorf("boom"), Want: ClassNone},
		"framework error":   {Err: errors.ErrNotFound, Want: ClassNone},
		"amount":            {Err: ErrInvalidAmount, Want: ClassInput},
		"wrapped duration":  {Err: errors.Wrap(ErrInvalidDuration, "duration"), Want: ClassInput},
		"buyer":             {Err: ErrInvalidBuyer, Want: ClassAuthorization},
		"seller":            {Err: errors.Wrap(ErrInvalidSeller, "seller"), Want: ClassAuthorization},
		"state":             {Err: ErrInvalidEscrowState, Want: ClassState},
		"not shipped":       {Err: ErrEscrowNotShipped, Want: ClassState},
		"mint":              {Err: ErrInvalidTokenMint, Want: ClassConsistency},
		"terms":             {Err: ErrTermsChanged, Want: ClassConsistency},
		"vault":             {Err: ErrInvalidVaultBalance, Want: ClassConsistency},
		"funds":             {Err: ErrInsufficientFunds, Want: ClassResource},
		"too early":         {Err: errTooEarly(100), Want: ClassTiming},
		"wrapped too early": {Err: errors.Wrap(errTooEarly(100), "withdraw"), Want: ClassTiming},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.Want, Classify(tc.Err))
		})
	}
}

func TestRetryAfter(t *testing.T) {
	eligible := escrowd.UnixTime(1560003600)
	err := errors.Wrap(errTooEarly(eligible), "withdraw")

	at, ok := RetryAfter(err)
	if !ok {
		t.Fatal("no retry time")
	}
	assert.Equal(t, eligible.Time(), at)

	if _, ok := RetryAfter(ErrWithdrawTooEarly); ok {
		t.Fatal("plain timing error carries no retry time")
	}
	if _, ok := RetryAfter(nil); ok {
		t.Fatal("nil error carries no retry time")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := map[*errors.Error]uint32{
		ErrInvalidAmount:         1000,
		ErrBuyerCannotBeSeller:   1001,
		ErrInvalidBuyerAddress:   1002,
		ErrInvalidArbiterAddress: 1003,
		ErrInvalidBuyer:          1004,
		ErrInvalidEscrowState:    1005,
		ErrInvalidTokenMint:      1006,
		ErrTermsChanged:          1007,
		ErrInsufficientFunds:     1008,
		ErrInvalidSeller:         1009,
		ErrEscrowNotShipped:      1010,
		ErrWithdrawTooEarly:      1011,
		ErrInvalidDuration:       1012,
		ErrInvalidVaultBalance:   1013,
	}
	for e, want := range codes {
		code, _ := errors.ABCIInfo(errors.Wrap(e, "test"), false)
		assert.Equal(t, want, code)
	}

	code, log := errors.ABCIInfo(errTooEarly(10), false)
	assert.Equal(t, uint32(1011), code)
	if log == "" {
		t.Fatal("empty log")
	}
}
