package escrow

import (
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestValidateMsgs(t *testing.T) {
	buyer := weavetest.NewAddress()
	arbiter := weavetest.NewAddress()
	seller := weavetest.NewAddress()
	meta := &escrowd.Metadata{Schema: 1}

	cases := map[string]struct {
		Msg     escrowd.Msg
		WantErr *errors.Error
	}{
		"valid create": {
			Msg: &CreateMsg{Metadata: meta, Seller: seller, ID: 1, Buyer: buyer, Arbiter: arbiter, Asset: "IOV", Amount: 1},
		},
		"create without metadata": {
			Msg:     &CreateMsg{Seller: seller, ID: 1, Buyer: buyer, Arbiter: arbiter, Asset: "IOV", Amount: 1},
			WantErr: errors.ErrEmpty,
		},
		"create without a seller": {
			Msg:     &CreateMsg{Metadata: meta, ID: 1, Buyer: buyer, Arbiter: arbiter, Asset: "IOV", Amount: 1},
			WantErr: ErrInvalidSeller,
		},
		"create with the seller as buyer": {
			Msg:     &CreateMsg{Metadata: meta, Seller: seller, ID: 1, Buyer: seller, Asset: "x", Amount: 1},
			WantErr: ErrBuyerCannotBeSeller,
		},
		"create with a short buyer address": {
			Msg:     &CreateMsg{Metadata: meta, Seller: seller, Buyer: buyer[:10], Arbiter: arbiter, Asset: "IOV", Amount: 1},
			WantErr: ErrInvalidBuyerAddress,
		},
		"create with every term wrong reports the amount": {
			Msg:     &CreateMsg{Metadata: meta, Seller: seller, AutoCompleteDuration: -1},
			WantErr: ErrInvalidAmount,
		},
		"create with a bad arbiter and asset reports the arbiter": {
			Msg:     &CreateMsg{Metadata: meta, Seller: seller, Buyer: buyer, Asset: "x", Amount: 1},
			WantErr: ErrInvalidArbiterAddress,
		},
		"create with a bad duration and asset reports the duration": {
			Msg:     &CreateMsg{Metadata: meta, Seller: seller, Buyer: buyer, Arbiter: arbiter, Asset: "x", Amount: 1, AutoCompleteDuration: -1},
			WantErr: ErrInvalidDuration,
		},
		"valid update": {
			Msg: &UpdateTermsMsg{Metadata: meta, Seller: seller, ID: 1, Buyer: buyer, Arbiter: arbiter, Asset: "ETH", Amount: 9},
		},
		"update with zero amount": {
			Msg:     &UpdateTermsMsg{Metadata: meta, Seller: seller, ID: 1, Buyer: buyer, Arbiter: arbiter, Asset: "ETH"},
			WantErr: ErrInvalidAmount,
		},
		"valid fund": {
			Msg: &FundMsg{Metadata: meta, Seller: seller, ID: 1, Asset: "IOV", TermsVersion: 3},
		},
		"fund without a seller": {
			Msg:     &FundMsg{Metadata: meta, ID: 1, Asset: "IOV"},
			WantErr: ErrInvalidSeller,
		},
		"valid mark shipped": {
			Msg: &MarkShippedMsg{Metadata: meta, Seller: seller, ID: 1},
		},
		"mark shipped with a bad schema": {
			Msg:     &MarkShippedMsg{Metadata: &escrowd.Metadata{}, Seller: seller, ID: 1},
			WantErr: errors.ErrMetadata,
		},
		"mark shipped without a seller": {
			Msg:     &MarkShippedMsg{Metadata: meta, ID: 1},
			WantErr: ErrInvalidSeller,
		},
		"valid buyer confirm": {
			Msg: &BuyerConfirmMsg{Metadata: meta, Seller: seller, ID: 1},
		},
		"buyer confirm without a seller": {
			Msg:     &BuyerConfirmMsg{Metadata: meta, ID: 1},
			WantErr: ErrInvalidSeller,
		},
		"valid withdraw": {
			Msg: &WithdrawMsg{Metadata: meta, Seller: seller, ID: 1, Asset: "IOV"},
		},
		"withdraw without metadata": {
			Msg:     &WithdrawMsg{Seller: seller, ID: 1, Asset: "IOV"},
			WantErr: errors.ErrEmpty,
		},
		"withdraw without a seller": {
			Msg:     &WithdrawMsg{Metadata: meta, ID: 1, Asset: "IOV"},
			WantErr: ErrInvalidSeller,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.WantErr, tc.Msg.Validate())
		})
	}
}

func TestMsgPaths(t *testing.T) {
	paths := map[string]escrowd.Msg{
		"escrow/create":        &CreateMsg{},
		"escrow/update_terms":  &UpdateTermsMsg{},
		"escrow/fund":          &FundMsg{},
		"escrow/mark_shipped":  &MarkShippedMsg{},
		"escrow/buyer_confirm": &BuyerConfirmMsg{},
		"escrow/withdraw":      &WithdrawMsg{},
	}
	for want, msg := range paths {
		assert.Equal(t, want, msg.Path())
	}
}

func TestCreateMsgCodec(t *testing.T) {
	msg := &CreateMsg{
		Metadata:             &escrowd.Metadata{Schema: 1},
		Seller:               weavetest.NewAddress(),
		ID:                   77,
		Buyer:                weavetest.NewAddress(),
		Arbiter:              weavetest.NewAddress(),
		Asset:                "IOV",
		Amount:               1234,
		AutoCompleteDuration: 86400,
	}
	raw, err := msg.Marshal()
	assert.Nil(t, err)

	var got CreateMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, msg, &got)

	// Both term messages share the wire format.
	var update UpdateTermsMsg
	assert.Nil(t, update.Unmarshal(raw))
	assert.Equal(t, msg.Amount, update.Amount)
	assert.Equal(t, msg.Buyer, update.Buyer)
	assert.Equal(t, msg.Seller, update.Seller)
}
