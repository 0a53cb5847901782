package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/gconf"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/utils"
)

// routes collects registered handlers by message path.
type routes map[string]escrowd.Handler

func (r routes) Handle(path string, h escrowd.Handler) {
	r[path] = h
}

// fixture is a configured ledger with the escrow and cash handlers
// registered. Each run is checked against a throw away cache and delivered
// through a savepoint, so a failed transaction leaves no trace.
type fixture struct {
	t      testing.TB
	db     store.CacheableKVStore
	auth   *weavetest.CtxAuth
	bank   cash.Controller
	routes routes
	height int64
	now    time.Time
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := store.MemStore()
	conf := &cash.Configuration{
		Metadata: &escrowd.Metadata{Schema: 1},
		Tickers:  []string{"IOV", "ETH"},
	}
	if err := gconf.Save(db, "cash", conf); err != nil {
		t.Fatalf("cannot save cash configuration: %s", err)
	}
	f := &fixture{
		t:      t,
		db:     db,
		auth:   &weavetest.CtxAuth{Key: "auth"},
		bank:   cash.NewController(cash.NewAccountBucket()),
		height: 100,
		now:    time.Unix(1560000000, 0),
	}
	f.useBank(f.bank)
	return f
}

// useBank registers the escrow handlers again with given value transfer
// service.
func (f *fixture) useBank(bank cash.Controller) {
	f.routes = make(routes)
	RegisterRoutes(f.routes, f.auth, bank)
}

func (f *fixture) ctx(signers ...escrowd.Condition) escrowd.Context {
	ctx := context.Background()
	ctx = escrowd.WithHeight(ctx, f.height)
	ctx = escrowd.WithBlockTime(ctx, f.now)
	return f.auth.SetConditions(ctx, signers...)
}

// run processes a transaction with given message, signed by given
// conditions.
func (f *fixture) run(msg escrowd.Msg, signers ...escrowd.Condition) (*escrowd.DeliverResult, error) {
	f.t.Helper()
	h, ok := f.routes[msg.Path()]
	if !ok {
		f.t.Fatalf("no handler for %q", msg.Path())
	}
	tx := &weavetest.Tx{Msg: msg}
	ctx := f.ctx(signers...)

	check := f.db.CacheWrap()
	_, err := h.Check(ctx, check, tx)
	check.Discard()
	if err != nil {
		return nil, err
	}
	return utils.NewSavepoint().OnDeliver().Deliver(ctx, f.db, tx, h)
}

func (f *fixture) mustRun(msg escrowd.Msg, signers ...escrowd.Condition) *escrowd.DeliverResult {
	f.t.Helper()
	res, err := f.run(msg, signers...)
	if err != nil {
		f.t.Fatalf("cannot process %s: %+v", msg.Path(), err)
	}
	return res
}

func (f *fixture) issue(owner escrowd.Address, amount uint64, ticker string) {
	f.t.Helper()
	if err := f.bank.Issue(f.db, owner, coin.NewCoin(amount, ticker)); err != nil {
		f.t.Fatalf("cannot issue %d %s: %s", amount, ticker, err)
	}
}

// balance returns the balance of an account or -1 if the account does not
// exist.
func (f *fixture) balance(owner escrowd.Address, ticker string) int64 {
	f.t.Helper()
	b, err := f.bank.Balance(f.db, owner, ticker)
	switch {
	case errors.ErrNotFound.Is(err):
		return -1
	case err != nil:
		f.t.Fatalf("cannot get balance: %s", err)
	}
	return int64(b)
}

func (f *fixture) agreement(seller escrowd.Address, id uint64) (*Agreement, error) {
	var a Agreement
	if err := NewAgreementBucket().One(f.db, AgreementKey(seller, id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (f *fixture) mustAgreement(seller escrowd.Address, id uint64) *Agreement {
	f.t.Helper()
	a, err := f.agreement(seller, id)
	if err != nil {
		f.t.Fatalf("cannot load agreement %d: %s", id, err)
	}
	return a
}

// parties of a single agreement.
type parties struct {
	seller  escrowd.Condition
	buyer   escrowd.Condition
	arbiter escrowd.Condition
}

func newParties() parties {
	return parties{
		seller:  weavetest.NewCondition(),
		buyer:   weavetest.NewCondition(),
		arbiter: weavetest.NewCondition(),
	}
}

func (p parties) createMsg(id uint64, amount uint64, duration int64) *CreateMsg {
	return &CreateMsg{
		Metadata:             &escrowd.Metadata{Schema: 1},
		Seller:               p.seller.Address(),
		ID:                   id,
		Buyer:                p.buyer.Address(),
		Arbiter:              p.arbiter.Address(),
		Asset:                "IOV",
		Amount:               amount,
		AutoCompleteDuration: duration,
	}
}

// fund funds the agreement with the current terms version.
func (f *fixture) fund(p parties, id uint64) {
	f.t.Helper()
	a := f.mustAgreement(p.seller.Address(), id)
	f.mustRun(&FundMsg{
		Metadata:     &escrowd.Metadata{Schema: 1},
		Seller:       p.seller.Address(),
		ID:           id,
		Asset:        a.Asset,
		TermsVersion: a.TermsVersion,
	}, p.buyer)
}

func (p parties) markShippedMsg(id uint64) *MarkShippedMsg {
	return &MarkShippedMsg{Metadata: &escrowd.Metadata{Schema: 1}, Seller: p.seller.Address(), ID: id}
}

func buyerConfirmMsg(seller escrowd.Address, id uint64) *BuyerConfirmMsg {
	return &BuyerConfirmMsg{Metadata: &escrowd.Metadata{Schema: 1}, Seller: seller, ID: id}
}

func (p parties) withdrawMsg(id uint64, asset string) *WithdrawMsg {
	return &WithdrawMsg{Metadata: &escrowd.Metadata{Schema: 1}, Seller: p.seller.Address(), ID: id, Asset: asset}
}

// failingBank is a value transfer service that cannot transfer.
type failingBank struct {
	cash.Controller
}

func (failingBank) Transfer(escrowd.KVStore, string, uint64, escrowd.Address, escrowd.Address) error {
	return errors.Wrap(errors.ErrState, "transfers disabled")
}
