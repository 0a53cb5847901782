package sigs

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the sigs.Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// transaction without the signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signatures of signers who signed the
	// transaction.
	GetSignatures() []*StdSignature
}

// StdSignature is a single ed25519 signature together with the public key
// and the sequence it was created for.
type StdSignature struct {
	Sequence  int64
	Pubkey    PublicKey
	Signature []byte
}

var _ escrowd.Persistent = (*StdSignature)(nil)

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if len(s.Pubkey) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

func (s *StdSignature) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	w.Varint(1, s.Sequence)
	w.RawBytes(2, s.Pubkey)
	w.RawBytes(3, s.Signature)
	return w.Bytes(), nil
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	*s = StdSignature{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			s.Sequence = r.Varint()
		case 2:
			s.Pubkey = r.RawBytes()
		case 3:
			s.Signature = r.RawBytes()
		default:
			r.Skip()
		}
	}
	return r.Err()
}
