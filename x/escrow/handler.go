package escrow

import (
	"encoding/binary"
	"fmt"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/migration"
	"github.com/iov-one/escrowd/orm"
	"github.com/iov-one/escrowd/x"
	"github.com/iov-one/escrowd/x/cash"
)

const (
	createCost       int64 = 300
	updateTermsCost  int64 = 50
	fundCost         int64 = 100
	markShippedCost  int64 = 20
	buyerConfirmCost int64 = 20
	withdrawCost     int64 = 100
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r escrowd.Registry, auth x.Authenticator, bank cash.Controller) {
	r = migration.SchemaMigratingRegistry(r)
	bucket := NewAgreementBucket()

	r.Handle(pathCreateMsg, CreateHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(pathUpdateTermsMsg, UpdateTermsHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(pathFundMsg, FundHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(pathMarkShippedMsg, MarkShippedHandler{auth: auth, bucket: bucket})
	r.Handle(pathBuyerConfirmMsg, BuyerConfirmHandler{auth: auth, bucket: bucket})
	r.Handle(pathWithdrawMsg, WithdrawHandler{auth: auth, bucket: bucket, bank: bank})
}

// RegisterQuery will register the agreement bucket as "/agreements"
func RegisterQuery(qr escrowd.QueryRouter) {
	NewAgreementBucket().Register("agreements", qr)
}

// CreateHandler opens a new agreement in the Created state. The seller
// must sign it.
type CreateHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ escrowd.Handler = CreateHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h CreateHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &escrowd.CheckResult{GasAllocated: createCost}, nil
}

// Deliver stores the agreement. The terms version is the current block
// height.
func (h CreateHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	height, err := blockHeight(ctx)
	if err != nil {
		return nil, err
	}

	key := AgreementKey(msg.Seller, msg.ID)
	agreement := &Agreement{
		Metadata:             &escrowd.Metadata{Schema: 1},
		State:                StateCreated,
		ID:                   msg.ID,
		Seller:               msg.Seller,
		Buyer:                msg.Buyer,
		Arbiter:              msg.Arbiter,
		Asset:                msg.Asset,
		Amount:               msg.Amount,
		AutoCompleteDuration: msg.AutoCompleteDuration,
		TermsVersion:         height,
		Vault:                VaultAddress(key),
	}
	if err := h.bucket.Create(db, key, agreement); err != nil {
		return nil, errors.Wrap(err, "cannot store agreement")
	}
	logTransition(ctx, key, 0, StateCreated)
	res := &escrowd.DeliverResult{Data: key}
	return tagged(res, msg.Path(), key, StateCreated), nil
}

func (h CreateHandler) validate(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*CreateMsg, error) {
	var msg *CreateMsg
	if err := escrowd.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Seller) {
		return nil, errors.Wrap(ErrInvalidSeller, "seller signature required")
	}
	if err := supportedAsset(db, h.bank, msg.Asset); err != nil {
		return nil, err
	}
	switch has, err := h.bucket.Has(db, AgreementKey(msg.Seller, msg.ID)); {
	case err != nil:
		return nil, errors.Wrap(err, "cannot check agreement")
	case has:
		return nil, errors.Wrapf(errors.ErrDuplicate, "agreement %d", msg.ID)
	}
	return msg, nil
}

// UpdateTermsHandler rewrites the terms of an agreement that was not yet
// funded. The seller must sign it.
type UpdateTermsHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ escrowd.Handler = UpdateTermsHandler{}

func (h UpdateTermsHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &escrowd.CheckResult{GasAllocated: updateTermsCost}, nil
}

// Deliver rewrites the terms. The new terms version is the current block
// height, or the next number if the terms were already written within
// this block.
func (h UpdateTermsHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	msg, key, agreement, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	height, err := blockHeight(ctx)
	if err != nil {
		return nil, err
	}

	version := height
	if version <= agreement.TermsVersion {
		version = agreement.TermsVersion + 1
	}
	agreement.Buyer = msg.Buyer
	agreement.Arbiter = msg.Arbiter
	agreement.Asset = msg.Asset
	agreement.Amount = msg.Amount
	agreement.AutoCompleteDuration = msg.AutoCompleteDuration
	agreement.TermsVersion = version
	if err := h.bucket.Put(db, key, agreement); err != nil {
		return nil, errors.Wrap(err, "cannot store agreement")
	}
	escrowd.GetLogger(ctx).Debug("agreement terms updated",
		"agreement", fmt.Sprintf("%X", key),
		"version", version)

	res := &escrowd.DeliverResult{Data: encodeVersion(version)}
	return tagged(res, msg.Path(), key, agreement.State), nil
}

func (h UpdateTermsHandler) validate(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*UpdateTermsMsg, []byte, *Agreement, error) {
	var msg *UpdateTermsMsg
	if err := escrowd.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	key, agreement, err := sellerAgreement(ctx, h.auth, db, h.bucket, msg.Seller, msg.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if agreement.State != StateCreated {
		return nil, nil, nil, errors.Wrapf(ErrInvalidEscrowState, "terms cannot change in %s state", agreement.State)
	}
	if err := supportedAsset(db, h.bank, msg.Asset); err != nil {
		return nil, nil, nil, err
	}
	return msg, key, agreement, nil
}

// FundHandler moves the agreement amount from the buyer into the vault.
type FundHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ escrowd.Handler = FundHandler{}

func (h FundHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &escrowd.CheckResult{GasAllocated: fundCost}, nil
}

// Deliver opens the vault account and deposits the agreement amount.
func (h FundHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	msg, key, agreement, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	agreement.State = StateFunded
	if err := h.bucket.Put(db, key, agreement); err != nil {
		return nil, errors.Wrap(err, "cannot store agreement")
	}

	if err := h.bank.CreateAccount(db, agreement.Vault, agreement.Asset); err != nil {
		return nil, errors.Wrap(err, "cannot open vault")
	}
	if err := h.bank.Transfer(db, agreement.Asset, agreement.Amount, agreement.Buyer, agreement.Vault); err != nil {
		return nil, errors.Wrap(err, "cannot deposit")
	}
	logTransition(ctx, key, StateCreated, StateFunded)
	return tagged(&escrowd.DeliverResult{}, msg.Path(), key, StateFunded), nil
}

func (h FundHandler) validate(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*FundMsg, []byte, *Agreement, error) {
	var msg *FundMsg
	if err := escrowd.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	key := AgreementKey(msg.Seller, msg.ID)
	agreement, err := loadAgreement(db, h.bucket, key)
	if err != nil {
		return nil, nil, nil, err
	}
	if !h.auth.HasAddress(ctx, agreement.Buyer) {
		return nil, nil, nil, errors.Wrap(ErrInvalidBuyer, "buyer signature required")
	}
	if agreement.State != StateCreated {
		return nil, nil, nil, errors.Wrapf(ErrInvalidEscrowState, "cannot fund in %s state", agreement.State)
	}
	if msg.Asset != agreement.Asset {
		return nil, nil, nil, errors.Wrapf(ErrInvalidTokenMint, "agreement asset is %s", agreement.Asset)
	}
	if msg.TermsVersion != agreement.TermsVersion {
		return nil, nil, nil, errors.Wrapf(ErrTermsChanged, "current terms version is %d", agreement.TermsVersion)
	}
	if err := supportedAsset(db, h.bank, agreement.Asset); err != nil {
		return nil, nil, nil, err
	}
	balance, err := h.bank.Balance(db, agreement.Buyer, agreement.Asset)
	switch {
	case errors.ErrNotFound.Is(err):
		balance = 0
	case err != nil:
		return nil, nil, nil, errors.Wrap(err, "buyer balance")
	}
	if balance < agreement.Amount {
		return nil, nil, nil, errors.Wrapf(ErrInsufficientFunds, "balance %d, required %d", balance, agreement.Amount)
	}
	return msg, key, agreement, nil
}

// MarkShippedHandler records the shipment time. The seller must sign it.
type MarkShippedHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ escrowd.Handler = MarkShippedHandler{}

func (h MarkShippedHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &escrowd.CheckResult{GasAllocated: markShippedCost}, nil
}

func (h MarkShippedHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	msg, key, agreement, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}

	agreement.State = StateMarkedAsShipped
	if agreement.ShippedAt == nil {
		agreement.ShippedAt = &now
	}
	if err := h.bucket.Put(db, key, agreement); err != nil {
		return nil, errors.Wrap(err, "cannot store agreement")
	}
	logTransition(ctx, key, StateFunded, StateMarkedAsShipped)
	return tagged(&escrowd.DeliverResult{}, msg.Path(), key, StateMarkedAsShipped), nil
}

func (h MarkShippedHandler) validate(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*MarkShippedMsg, []byte, *Agreement, error) {
	var msg *MarkShippedMsg
	if err := escrowd.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	key, agreement, err := sellerAgreement(ctx, h.auth, db, h.bucket, msg.Seller, msg.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if agreement.State != StateFunded {
		return nil, nil, nil, errors.Wrapf(ErrInvalidEscrowState, "cannot ship in %s state", agreement.State)
	}
	return msg, key, agreement, nil
}

// BuyerConfirmHandler records that the buyer received the goods.
type BuyerConfirmHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ escrowd.Handler = BuyerConfirmHandler{}

func (h BuyerConfirmHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &escrowd.CheckResult{GasAllocated: buyerConfirmCost}, nil
}

func (h BuyerConfirmHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	msg, key, agreement, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	agreement.State = StateBuyerConfirmed
	if err := h.bucket.Put(db, key, agreement); err != nil {
		return nil, errors.Wrap(err, "cannot store agreement")
	}
	logTransition(ctx, key, StateMarkedAsShipped, StateBuyerConfirmed)
	return tagged(&escrowd.DeliverResult{}, msg.Path(), key, StateBuyerConfirmed), nil
}

func (h BuyerConfirmHandler) validate(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*BuyerConfirmMsg, []byte, *Agreement, error) {
	var msg *BuyerConfirmMsg
	if err := escrowd.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	key := AgreementKey(msg.Seller, msg.ID)
	agreement, err := loadAgreement(db, h.bucket, key)
	if err != nil {
		return nil, nil, nil, err
	}
	if !h.auth.HasAddress(ctx, agreement.Buyer) {
		return nil, nil, nil, errors.Wrap(ErrInvalidBuyer, "buyer signature required")
	}
	if agreement.State != StateMarkedAsShipped {
		return nil, nil, nil, errors.Wrapf(ErrInvalidEscrowState, "cannot confirm in %s state", agreement.State)
	}
	return msg, key, agreement, nil
}

// WithdrawHandler releases the vault funds to the seller and deletes the
// agreement. The seller must sign it.
type WithdrawHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ escrowd.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &escrowd.CheckResult{GasAllocated: withdrawCost}, nil
}

// Deliver deletes the agreement, moves the vault funds to the seller
// account, creating it if needed, and closes the vault.
func (h WithdrawHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	msg, key, agreement, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if err := h.bucket.Delete(db, key); err != nil {
		return nil, errors.Wrap(err, "cannot delete agreement")
	}

	switch _, err := h.bank.Balance(db, agreement.Seller, agreement.Asset); {
	case errors.ErrNotFound.Is(err):
		if err := h.bank.CreateAccount(db, agreement.Seller, agreement.Asset); err != nil {
			return nil, errors.Wrap(err, "cannot open seller account")
		}
	case err != nil:
		return nil, errors.Wrap(err, "seller balance")
	}
	if err := h.bank.Transfer(db, agreement.Asset, agreement.Amount, agreement.Vault, agreement.Seller); err != nil {
		return nil, errors.Wrap(err, "cannot release")
	}
	if err := h.bank.CloseAccount(db, agreement.Vault, agreement.Asset); err != nil {
		return nil, errors.Wrap(err, "cannot close vault")
	}
	logTransition(ctx, key, agreement.State, StateFundsReleased)
	return tagged(&escrowd.DeliverResult{}, msg.Path(), key, StateFundsReleased), nil
}

func (h WithdrawHandler) validate(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*WithdrawMsg, []byte, *Agreement, error) {
	var msg *WithdrawMsg
	if err := escrowd.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	key, agreement, err := sellerAgreement(ctx, h.auth, db, h.bucket, msg.Seller, msg.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if msg.Asset != agreement.Asset {
		return nil, nil, nil, errors.Wrapf(ErrInvalidTokenMint, "agreement asset is %s", agreement.Asset)
	}

	switch agreement.State {
	case StateMarkedAsShipped:
		if agreement.ShippedAt == nil {
			return nil, nil, nil, errors.Wrap(ErrEscrowNotShipped, "no shipment time")
		}
		now, err := blockNow(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		eligible := agreement.ShippedAt.AddSeconds(agreement.AutoCompleteDuration)
		if now < eligible {
			return nil, nil, nil, errTooEarly(eligible)
		}
	case StateBuyerConfirmed:
	default:
		return nil, nil, nil, errors.Wrapf(ErrInvalidEscrowState, "cannot withdraw in %s state", agreement.State)
	}

	balance, err := h.bank.Balance(db, agreement.Vault, agreement.Asset)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return nil, nil, nil, errors.Wrap(ErrInvalidVaultBalance, "no vault account")
	default:
		return nil, nil, nil, errors.Wrap(err, "vault balance")
	}
	if balance != agreement.Amount {
		return nil, nil, nil, errors.Wrapf(ErrInvalidVaultBalance, "vault holds %d, agreement is %d", balance, agreement.Amount)
	}
	return msg, key, agreement, nil
}

// sellerAgreement loads the agreement of given seller and requires the
// seller signature.
func sellerAgreement(ctx escrowd.Context, auth x.Authenticator, db escrowd.ReadOnlyKVStore, b orm.ModelBucket, seller escrowd.Address, id uint64) ([]byte, *Agreement, error) {
	key := AgreementKey(seller, id)
	agreement, err := loadAgreement(db, b, key)
	if err != nil {
		return nil, nil, err
	}
	if !auth.HasAddress(ctx, agreement.Seller) {
		return nil, nil, errors.Wrap(ErrInvalidSeller, "seller signature required")
	}
	return key, agreement, nil
}

// supportedAsset requires the value transfer service to hold accounts of
// given ticker.
func supportedAsset(db escrowd.ReadOnlyKVStore, bank cash.Controller, ticker string) error {
	ok, err := bank.Supports(db, ticker)
	if err != nil {
		return errors.Wrap(err, "cannot check asset")
	}
	if !ok {
		return errors.Wrapf(ErrInvalidTokenMint, "asset %s not supported", ticker)
	}
	return nil
}

func loadAgreement(db escrowd.ReadOnlyKVStore, b orm.ModelBucket, key []byte) (*Agreement, error) {
	var a Agreement
	if err := b.One(db, key, &a); err != nil {
		return nil, errors.Wrap(err, "cannot load agreement")
	}
	return &a, nil
}

func blockNow(ctx escrowd.Context) (escrowd.UnixTime, error) {
	now, ok := escrowd.BlockTime(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block time not present in context")
	}
	return escrowd.AsUnixTime(now), nil
}

func blockHeight(ctx escrowd.Context) (uint64, error) {
	height, ok := escrowd.GetHeight(ctx)
	if !ok || height < 0 {
		return 0, errors.Wrap(errors.ErrHuman, "block height not present in context")
	}
	return uint64(height), nil
}

func encodeVersion(v uint64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, v)
	return raw
}

func logTransition(ctx escrowd.Context, key []byte, from, to State) {
	escrowd.GetLogger(ctx).Debug("agreement transition",
		"agreement", fmt.Sprintf("%X", key),
		"from", from,
		"to", to)
}

func tagged(res *escrowd.DeliverResult, action string, key []byte, state State) *escrowd.DeliverResult {
	return res.Tag("action", action).
		Tag("agreement", fmt.Sprintf("%X", key)).
		Tag("state", state.String())
}
