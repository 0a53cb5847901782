package escrowd

import (
	"testing"

	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestDeliverTxError(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"registered error": {
			err:      errors.Wrap(errors.ErrNotFound, "agreement"),
			wantCode: 3,
			wantLog:  "cannot deliver tx: agreement: not found",
		},
		"internal error is redacted": {
			err:      errors.Wrap(errFake{}, "oops"),
			wantCode: 1,
			wantLog:  "cannot deliver tx: internal error",
		},
		"internal error is not redacted in debug mode": {
			err:      errFake{},
			debug:    true,
			wantCode: 1,
			wantLog:  "cannot deliver tx: fake",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res := DeliverTxError(tc.err, tc.debug)
			assert.Equal(t, tc.wantCode, res.Code)
			assert.Equal(t, tc.wantLog, res.Log)

			check := CheckTxError(tc.err, tc.debug)
			assert.Equal(t, tc.wantCode, check.Code)
		})
	}
}

func TestDeliverOrError(t *testing.T) {
	res := &DeliverResult{Data: []byte("key")}
	res.Tag("action", "create")

	abciRes := DeliverOrError(res, nil, false)
	assert.Equal(t, uint32(0), abciRes.Code)
	assert.Equal(t, []byte("key"), abciRes.Data)
	assert.Equal(t, 1, len(abciRes.Tags))
	assert.Equal(t, "action", string(abciRes.Tags[0].Key))

	abciRes = DeliverOrError(nil, errors.ErrDuplicate, false)
	assert.Equal(t, uint32(6), abciRes.Code)
}

type errFake struct{}

func (errFake) Error() string { return "fake" }
