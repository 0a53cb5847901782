package app

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/sigs"
)

// Field numbers of the Tx wire format. Exactly one message field is set.
const (
	fieldSignatures = 1

	fieldSendMsg          = 10
	fieldCreateAccountMsg = 11

	fieldCreateMsg       = 20
	fieldUpdateTermsMsg  = 21
	fieldFundMsg         = 22
	fieldMarkShippedMsg  = 23
	fieldBuyerConfirmMsg = 24
	fieldWithdrawMsg     = 25
)

// Tx carries a single message together with the signatures of all the
// parties that authorize it.
type Tx struct {
	Signatures []*sigs.StdSignature
	Msg        escrowd.Msg
}

// make sure tx fulfills all interfaces
var _ escrowd.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (escrowd.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the single message carried by this transaction.
func (tx *Tx) GetMsg() (escrowd.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrInput, "tx has no message")
	}
	return tx.Msg, nil
}

// GetSignatures returns all signatures of this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the canonical byte representation of the Msg.
// Signatures are not part of the signed content.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	cpy := Tx{Msg: tx.Msg}
	return cpy.Marshal()
}

// Sign appends a signature of given key for given sequence.
func (tx *Tx) Sign(key sigs.PrivateKey, chainID string, seq int64) error {
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return errors.Wrap(err, "cannot sign")
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	for _, sig := range tx.Signatures {
		if err := w.Message(fieldSignatures, sig); err != nil {
			return nil, err
		}
	}
	if tx.Msg != nil {
		field, err := msgField(tx.Msg)
		if err != nil {
			return nil, err
		}
		if err := w.Message(field, tx.Msg); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		field := r.Field()
		if field == fieldSignatures {
			sig := &sigs.StdSignature{}
			r.Message(sig)
			tx.Signatures = append(tx.Signatures, sig)
			continue
		}
		msg := newMsg(field)
		if msg == nil {
			r.Skip()
			continue
		}
		if tx.Msg != nil {
			return errors.Wrap(errors.ErrInput, "tx carries more than one message")
		}
		r.Message(msg)
		tx.Msg = msg
	}
	return r.Err()
}

func msgField(msg escrowd.Msg) (int, error) {
	switch msg.(type) {
	case *cash.SendMsg:
		return fieldSendMsg, nil
	case *cash.CreateAccountMsg:
		return fieldCreateAccountMsg, nil
	case *escrow.CreateMsg:
		return fieldCreateMsg, nil
	case *escrow.UpdateTermsMsg:
		return fieldUpdateTermsMsg, nil
	case *escrow.FundMsg:
		return fieldFundMsg, nil
	case *escrow.MarkShippedMsg:
		return fieldMarkShippedMsg, nil
	case *escrow.BuyerConfirmMsg:
		return fieldBuyerConfirmMsg, nil
	case *escrow.WithdrawMsg:
		return fieldWithdrawMsg, nil
	}
	return 0, errors.Wrapf(errors.ErrType, "unsupported message %T", msg)
}

func newMsg(field int) escrowd.Msg {
	switch field {
	case fieldSendMsg:
		return &cash.SendMsg{}
	case fieldCreateAccountMsg:
		return &cash.CreateAccountMsg{}
	case fieldCreateMsg:
		return &escrow.CreateMsg{}
	case fieldUpdateTermsMsg:
		return &escrow.UpdateTermsMsg{}
	case fieldFundMsg:
		return &escrow.FundMsg{}
	case fieldMarkShippedMsg:
		return &escrow.MarkShippedMsg{}
	case fieldBuyerConfirmMsg:
		return &escrow.BuyerConfirmMsg{}
	case fieldWithdrawMsg:
		return &escrow.WithdrawMsg{}
	}
	return nil
}
