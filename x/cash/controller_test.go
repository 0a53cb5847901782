package cash

import (
	"math"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/gconf"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/weavetest/assert"
)

// newConfiguredStore returns a store with the cash configuration allowing
// IOV and ETH accounts.
func newConfiguredStore(t testing.TB) store.CacheableKVStore {
	t.Helper()
	db := store.MemStore()
	conf := &Configuration{
		Metadata: &escrowd.Metadata{Schema: 1},
		Tickers:  []string{"IOV", "ETH"},
	}
	if err := gconf.Save(db, confPkg, conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}
	return db
}

func TestControllerIssueAndBalance(t *testing.T) {
	db := newConfiguredStore(t)
	ctrl := NewController(NewAccountBucket())
	alice := weavetest.NewAddress()

	_, err := ctrl.Balance(db, alice, "IOV")
	assert.IsErr(t, errors.ErrNotFound, err)

	assert.Nil(t, ctrl.Issue(db, alice, coin.NewCoin(100, "IOV")))
	assert.Nil(t, ctrl.Issue(db, alice, coin.NewCoin(20, "IOV")))

	bal, err := ctrl.Balance(db, alice, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, uint64(120), bal)

	// Other tickers are separate accounts.
	_, err = ctrl.Balance(db, alice, "ETH")
	assert.IsErr(t, errors.ErrNotFound, err)

	err = ctrl.Issue(db, alice, coin.NewCoin(1, "DOGE"))
	assert.IsErr(t, errors.ErrInput, err)

	err = ctrl.Issue(db, alice, coin.NewCoin(math.MaxUint64, "IOV"))
	assert.IsErr(t, errors.ErrOverflow, err)
}

func TestControllerAccounts(t *testing.T) {
	db := newConfiguredStore(t)
	ctrl := NewController(NewAccountBucket())
	alice := weavetest.NewAddress()

	assert.Nil(t, ctrl.CreateAccount(db, alice, "ETH"))
	assert.IsErr(t, errors.ErrDuplicate, ctrl.CreateAccount(db, alice, "ETH"))
	assert.IsErr(t, errors.ErrInput, ctrl.CreateAccount(db, alice, "BTC"))

	bal, err := ctrl.Balance(db, alice, "ETH")
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), bal)

	assert.Nil(t, ctrl.Issue(db, alice, coin.NewCoin(5, "ETH")))
	assert.IsErr(t, errors.ErrState, ctrl.CloseAccount(db, alice, "ETH"))

	bob := weavetest.NewAddress()
	assert.Nil(t, ctrl.CreateAccount(db, bob, "ETH"))
	assert.Nil(t, ctrl.Transfer(db, "ETH", 5, alice, bob))
	assert.Nil(t, ctrl.CloseAccount(db, alice, "ETH"))
	assert.IsErr(t, errors.ErrNotFound, ctrl.CloseAccount(db, alice, "ETH"))
}

func TestControllerTransfer(t *testing.T) {
	alice := weavetest.NewAddress()
	bob := weavetest.NewAddress()
	carol := weavetest.NewAddress()

	cases := map[string]struct {
		Ticker    string
		Amount    uint64
		From, To  escrowd.Address
		WantErr   *errors.Error
		WantAlice uint64
		WantBob   uint64
	}{
		"move all funds": {
			Ticker:    "IOV",
			Amount:    100,
			From:      alice,
			To:        bob,
			WantAlice: 0,
			WantBob:   150,
		},
		"move some funds": {
			Ticker:    "IOV",
			Amount:    30,
			From:      alice,
			To:        bob,
			WantAlice: 70,
			WantBob:   80,
		},
		"insufficient funds": {
			Ticker:    "IOV",
			Amount:    101,
			From:      alice,
			To:        bob,
			WantErr:   errors.ErrInsufficientAmount,
			WantAlice: 100,
			WantBob:   50,
		},
		"zero amount": {
			Ticker:    "IOV",
			Amount:    0,
			From:      alice,
			To:        bob,
			WantErr:   errors.ErrAmount,
			WantAlice: 100,
			WantBob:   50,
		},
		"missing destination account": {
			Ticker:    "IOV",
			Amount:    10,
			From:      alice,
			To:        carol,
			WantErr:   errors.ErrNotFound,
			WantAlice: 100,
			WantBob:   50,
		},
		"missing source account": {
			Ticker:    "ETH",
			Amount:    1,
			From:      alice,
			To:        bob,
			WantErr:   errors.ErrNotFound,
			WantAlice: 100,
			WantBob:   50,
		},
		"self transfer": {
			Ticker:    "IOV",
			Amount:    100,
			From:      alice,
			To:        alice,
			WantAlice: 100,
			WantBob:   50,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := newConfiguredStore(t)
			ctrl := NewController(NewAccountBucket())
			assert.Nil(t, ctrl.Issue(db, alice, coin.NewCoin(100, "IOV")))
			assert.Nil(t, ctrl.Issue(db, bob, coin.NewCoin(50, "IOV")))

			err := ctrl.Transfer(db, tc.Ticker, tc.Amount, tc.From, tc.To)
			assert.IsErr(t, tc.WantErr, err)

			a, err := ctrl.Balance(db, alice, "IOV")
			assert.Nil(t, err)
			assert.Equal(t, tc.WantAlice, a)
			b, err := ctrl.Balance(db, bob, "IOV")
			assert.Nil(t, err)
			assert.Equal(t, tc.WantBob, b)
		})
	}
}

func TestControllerTransferOverflow(t *testing.T) {
	db := newConfiguredStore(t)
	ctrl := NewController(NewAccountBucket())
	alice := weavetest.NewAddress()
	bob := weavetest.NewAddress()

	assert.Nil(t, ctrl.Issue(db, alice, coin.NewCoin(10, "IOV")))
	assert.Nil(t, ctrl.Issue(db, bob, coin.NewCoin(math.MaxUint64-5, "IOV")))

	err := ctrl.Transfer(db, "IOV", 10, alice, bob)
	assert.IsErr(t, errors.ErrOverflow, err)

	a, err := ctrl.Balance(db, alice, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, uint64(10), a)
}

func TestAccountsByOwner(t *testing.T) {
	db := newConfiguredStore(t)
	b := NewAccountBucket()
	ctrl := NewController(b)
	alice := weavetest.NewAddress()

	assert.Nil(t, ctrl.Issue(db, alice, coin.NewCoin(1, "IOV")))
	assert.Nil(t, ctrl.Issue(db, alice, coin.NewCoin(2, "ETH")))
	assert.Nil(t, ctrl.Issue(db, weavetest.NewAddress(), coin.NewCoin(3, "IOV")))

	var accounts []*Account
	keys, err := b.ByIndex(db, "owner", alice, &accounts)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(keys))
	for _, a := range accounts {
		assert.Equal(t, alice, a.Owner)
	}
}

func TestControllerSupports(t *testing.T) {
	ctrl := NewController(NewAccountBucket())

	_, err := ctrl.Supports(store.MemStore(), "IOV")
	assert.IsErr(t, errors.ErrNotFound, err)

	db := newConfiguredStore(t)
	ok, err := ctrl.Supports(db, "ETH")
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
	ok, err = ctrl.Supports(db, "DOGE")
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}
