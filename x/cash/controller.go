package cash

import (
	"math"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
)

// Controller is the value transfer service. Every account holds a single
// ticker and accounts must exist before they can receive value.
type Controller interface {
	// Balance returns the balance of an account. ErrNotFound is returned
	// if the account does not exist.
	Balance(db escrowd.ReadOnlyKVStore, owner escrowd.Address, ticker string) (uint64, error)

	// Supports returns true if accounts of given ticker can be opened.
	Supports(db escrowd.ReadOnlyKVStore, ticker string) (bool, error)

	// CreateAccount opens an empty account. ErrDuplicate is returned if
	// the account already exists.
	CreateAccount(db escrowd.KVStore, owner escrowd.Address, ticker string) error

	// CloseAccount removes an account. Only an account with no balance
	// can be closed.
	CloseAccount(db escrowd.KVStore, owner escrowd.Address, ticker string) error

	// Transfer moves exactly given amount between two existing accounts.
	// It never partially applies.
	Transfer(db escrowd.KVStore, ticker string, amount uint64, from, to escrowd.Address) error

	// Issue adds given coin to the account of the owner, creating the
	// account if needed.
	Issue(db escrowd.KVStore, owner escrowd.Address, c coin.Coin) error
}

// BaseController is a simple implementation of the Controller interface
// built on the account bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller that stores accounts in given bucket.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) load(db escrowd.ReadOnlyKVStore, owner escrowd.Address, ticker string) (*Account, error) {
	var acc Account
	if err := c.bucket.One(db, AccountKey(owner, ticker), &acc); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "no %s account for %s", ticker, owner)
		}
		return nil, err
	}
	return &acc, nil
}

func (c BaseController) Balance(db escrowd.ReadOnlyKVStore, owner escrowd.Address, ticker string) (uint64, error) {
	acc, err := c.load(db, owner, ticker)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

func (c BaseController) Supports(db escrowd.ReadOnlyKVStore, ticker string) (bool, error) {
	conf, err := loadConf(db)
	if err != nil {
		return false, err
	}
	return conf.Allows(ticker), nil
}

func (c BaseController) CreateAccount(db escrowd.KVStore, owner escrowd.Address, ticker string) error {
	switch ok, err := c.Supports(db, ticker); {
	case err != nil:
		return err
	case !ok:
		return errors.Wrapf(errors.ErrInput, "ticker %q not supported", ticker)
	}
	acc := &Account{
		Metadata: &escrowd.Metadata{Schema: 1},
		Owner:    owner,
		Ticker:   ticker,
	}
	if err := c.bucket.Create(db, AccountKey(owner, ticker), acc); err != nil {
		return errors.Wrap(err, "create account")
	}
	return nil
}

func (c BaseController) CloseAccount(db escrowd.KVStore, owner escrowd.Address, ticker string) error {
	acc, err := c.load(db, owner, ticker)
	if err != nil {
		return err
	}
	if acc.Balance != 0 {
		return errors.Wrapf(errors.ErrState, "account holds %d %s", acc.Balance, ticker)
	}
	return c.bucket.Delete(db, AccountKey(owner, ticker))
}

func (c BaseController) Transfer(db escrowd.KVStore, ticker string, amount uint64, from, to escrowd.Address) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}
	src, err := c.load(db, from, ticker)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	dst, err := c.load(db, to, ticker)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, required %d", src.Balance, amount)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}

	src.Balance -= amount
	dst.Balance += amount
	if err := c.bucket.Put(db, AccountKey(from, ticker), src); err != nil {
		return errors.Wrap(err, "save source")
	}
	if err := c.bucket.Put(db, AccountKey(to, ticker), dst); err != nil {
		return errors.Wrap(err, "save destination")
	}
	return nil
}

func (c BaseController) Issue(db escrowd.KVStore, owner escrowd.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "coin")
	}
	acc, err := c.load(db, owner, amount.Ticker)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		if err := c.CreateAccount(db, owner, amount.Ticker); err != nil {
			return err
		}
		acc = &Account{
			Metadata: &escrowd.Metadata{Schema: 1},
			Owner:    owner,
			Ticker:   amount.Ticker,
		}
	default:
		return err
	}

	total, err := acc.Coin().Add(amount)
	if err != nil {
		return errors.Wrap(err, "issue")
	}
	acc.Balance = total.Amount
	return c.bucket.Put(db, AccountKey(owner, amount.Ticker), acc)
}
