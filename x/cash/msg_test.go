package cash

import (
	"strings"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestValidateSendMsg(t *testing.T) {
	src := weavetest.NewAddress()
	dst := weavetest.NewAddress()

	cases := map[string]struct {
		Msg     escrowd.Msg
		WantErr *errors.Error
	}{
		"valid message": {
			Msg: &SendMsg{
				Metadata:    &escrowd.Metadata{Schema: 1},
				Source:      src,
				Destination: dst,
				Amount:      coin.NewCoinp(10, "IOV"),
				Memo:        "for the pizza",
			},
		},
		"missing metadata": {
			Msg: &SendMsg{
				Source:      src,
				Destination: dst,
				Amount:      coin.NewCoinp(10, "IOV"),
			},
			WantErr: errors.ErrEmpty,
		},
		"zero amount": {
			Msg: &SendMsg{
				Metadata:    &escrowd.Metadata{Schema: 1},
				Source:      src,
				Destination: dst,
				Amount:      coin.NewCoinp(0, "IOV"),
			},
			WantErr: errors.ErrAmount,
		},
		"invalid destination": {
			Msg: &SendMsg{
				Metadata:    &escrowd.Metadata{Schema: 1},
				Source:      src,
				Destination: escrowd.Address("short"),
				Amount:      coin.NewCoinp(10, "IOV"),
			},
			WantErr: errors.ErrInput,
		},
		"memo too long": {
			Msg: &SendMsg{
				Metadata:    &escrowd.Metadata{Schema: 1},
				Source:      src,
				Destination: dst,
				Amount:      coin.NewCoinp(10, "IOV"),
				Memo:        strings.Repeat("x", maxMemoSize+1),
			},
			WantErr: errors.ErrInput,
		},
		"invalid create account owner": {
			Msg: &CreateAccountMsg{
				Metadata: &escrowd.Metadata{Schema: 1},
				Ticker:   "IOV",
			},
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.WantErr, tc.Msg.Validate())
		})
	}
}

func TestSendMsgFieldErrors(t *testing.T) {
	msg := &SendMsg{
		Metadata:    &escrowd.Metadata{Schema: 1},
		Source:      weavetest.NewAddress(),
		Destination: escrowd.Address("short"),
		Amount:      coin.NewCoinp(0, "IOV"),
	}
	err := msg.Validate()
	assert.FieldError(t, err, "Amount", errors.ErrAmount)
	assert.FieldError(t, err, "Destination", errors.ErrInput)
	assert.FieldError(t, err, "Source", nil)
	assert.FieldError(t, err, "Memo", nil)
}

func TestSendMsgCodec(t *testing.T) {
	msg := &SendMsg{
		Metadata:    &escrowd.Metadata{Schema: 1},
		Source:      weavetest.NewAddress(),
		Destination: weavetest.NewAddress(),
		Amount:      coin.NewCoinp(10, "IOV"),
		Memo:        "rent",
	}
	raw, err := msg.Marshal()
	assert.Nil(t, err)

	var got SendMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, msg, &got)
}
