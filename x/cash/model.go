package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/migration"
	"github.com/iov-one/escrowd/orm"
)

func init() {
	migration.MustRegister(1, &Account{}, migration.NoModification)
}

// BucketName is where we store the balances
const BucketName = "cash"

// Account holds the balance of a single ticker owned by an address.
type Account struct {
	Metadata *escrowd.Metadata
	Owner    escrowd.Address
	Ticker   string
	Balance  uint64
}

var _ orm.Model = (*Account)(nil)

// GetMetadata returns the schema metadata of this account.
func (a *Account) GetMetadata() *escrowd.Metadata {
	return a.Metadata
}

// Validate makes sure the account is well formed.
func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", a.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	if !coin.IsTicker(a.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrInput)
	}
	return errs
}

// Coin returns the account balance as a coin.
func (a *Account) Coin() coin.Coin {
	return coin.NewCoin(a.Balance, a.Ticker)
}

func (a *Account) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	if err := w.Message(1, a.Metadata); err != nil {
		return nil, err
	}
	w.RawBytes(2, a.Owner)
	w.String(3, a.Ticker)
	w.Uvarint(4, a.Balance)
	return w.Bytes(), nil
}

func (a *Account) Unmarshal(raw []byte) error {
	*a = Account{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			a.Metadata = &escrowd.Metadata{}
			r.Message(a.Metadata)
		case 2:
			a.Owner = r.RawBytes()
		case 3:
			a.Ticker = r.Text()
		case 4:
			a.Balance = r.Uvarint()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// AccountKey returns the primary key of the account of given owner and
// ticker.
func AccountKey(owner escrowd.Address, ticker string) []byte {
	key := make([]byte, 0, len(owner)+len(ticker))
	key = append(key, owner...)
	return append(key, ticker...)
}

func accountOwner(m orm.Model) ([]byte, error) {
	a, ok := m.(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "unexpected type %T", m)
	}
	return a.Owner, nil
}

// NewAccountBucket returns a bucket that stores accounts. Accounts are
// indexed by their owner.
func NewAccountBucket() orm.ModelBucket {
	b := orm.NewModelBucket(BucketName, &Account{},
		orm.WithIndex("owner", accountOwner, false))
	return migration.NewModelBucket(b)
}
