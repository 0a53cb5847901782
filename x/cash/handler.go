package cash

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/migration"
	"github.com/iov-one/escrowd/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r escrowd.Registry, auth x.Authenticator, control Controller) {
	r = migration.SchemaMigratingRegistry(r)
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, control))
	r.Handle(CreateAccountMsg{}.Path(), NewCreateAccountHandler(auth, control))
}

// RegisterQuery will register the account bucket as "/accounts"
func RegisterQuery(qr escrowd.QueryRouter) {
	NewAccountBucket().Register("accounts", qr)
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ escrowd.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &escrowd.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the tokens from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Transfer(db, msg.Amount.Ticker, msg.Amount.Amount, msg.Source, msg.Destination); err != nil {
		return nil, err
	}
	res := &escrowd.DeliverResult{}
	return res.Tag("action", msg.Path()).Tag("source", msg.Source.String()), nil
}

func (h SendHandler) validate(ctx escrowd.Context, tx escrowd.Tx) (*SendMsg, error) {
	var msg *SendMsg
	if err := escrowd.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	// Make sure we have permission from the source.
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return msg, nil
}

// CreateAccountHandler opens accounts. Only the owner can open an account,
// so that nobody can occupy an address that is meant to be created by
// another extension.
type CreateAccountHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ escrowd.Handler = CreateAccountHandler{}

// NewCreateAccountHandler creates a handler for CreateAccountMsg
func NewCreateAccountHandler(auth x.Authenticator, control Controller) CreateAccountHandler {
	return CreateAccountHandler{
		auth:    auth,
		control: control,
	}
}

func (h CreateAccountHandler) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &escrowd.CheckResult{GasAllocated: createAccountTxCost}, nil
}

func (h CreateAccountHandler) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.CreateAccount(db, msg.Owner, msg.Ticker); err != nil {
		return nil, err
	}
	res := &escrowd.DeliverResult{Data: AccountKey(msg.Owner, msg.Ticker)}
	return res.Tag("action", msg.Path()).Tag("owner", msg.Owner.String()), nil
}

func (h CreateAccountHandler) validate(ctx escrowd.Context, tx escrowd.Tx) (*CreateAccountMsg, error) {
	var msg *CreateAccountMsg
	if err := escrowd.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return msg, nil
}
