package sigs

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/migration"
	"github.com/iov-one/escrowd/orm"
)

func init() {
	migration.MustRegister(1, &UserData{}, migration.NoModification)
}

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is limited by the client. The greatest supported nonce
// value at client side is
//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
const maxSequenceValue = (1 << 53) - 1

// UserData stores the public key of a signer together with the sequence
// number the next signature must use.
type UserData struct {
	Metadata *escrowd.Metadata
	Pubkey   PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) GetMetadata() *escrowd.Metadata {
	return u.Metadata
}

func (u *UserData) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", u.Metadata.Validate())
	errs = errors.AppendField(errs, "Pubkey", u.Pubkey.Validate())
	if u.Sequence < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	}
	return errs
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

func (u *UserData) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, u.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, u.Pubkey)
	w.Varint(3, u.Sequence)
	return w.Bytes(), nil
}

func (u *UserData) Unmarshal(raw []byte) error {
	*u = UserData{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			u.Metadata = &escrowd.Metadata{}
			r.Message(u.Metadata)
		case 2:
			u.Pubkey = r.RawBytes()
		case 3:
			u.Sequence = r.Varint()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// NewBucket returns the bucket of signers, keyed by the public key address.
func NewBucket() orm.ModelBucket {
	return migration.NewModelBucket(orm.NewModelBucket(BucketName, &UserData{}))
}

// getOrCreate loads the user data of given key or returns a fresh one
// starting at sequence zero.
func getOrCreate(db escrowd.ReadOnlyKVStore, b orm.ModelBucket, pubkey PublicKey) (*UserData, error) {
	var user UserData
	switch err := b.One(db, pubkey.Address(), &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{
			Metadata: &escrowd.Metadata{Schema: 1},
			Pubkey:   pubkey,
		}, nil
	default:
		return nil, err
	}
}

// NextNonce returns the next numeric nonce value that should be used during
// a transaction signing. If the signer is not yet known, nonce counting
// starts with zero.
func NextNonce(db escrowd.ReadOnlyKVStore, signer escrowd.Address) (int64, error) {
	var user UserData
	switch err := NewBucket().One(db, signer, &user); {
	case err == nil:
		return user.Sequence, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "bucket get")
	}
}
