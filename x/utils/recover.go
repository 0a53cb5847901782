package utils

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// Recovery is a decorator that turns a panic of any next handler into an
// ErrPanic error. The panic is logged together with the path of the
// message that caused it, so that a broken agreement or a failing store
// can be traced back to the transaction.
type Recovery struct{}

var _ escrowd.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns a panic into an ErrPanic error.
func (r Recovery) Check(ctx escrowd.Context, store escrowd.KVStore, tx escrowd.Tx, next escrowd.Checker) (_ *escrowd.CheckResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked(ctx, tx, p)
		}
	}()
	return next.Check(ctx, store, tx)
}

// Deliver turns a panic into an ErrPanic error.
func (r Recovery) Deliver(ctx escrowd.Context, store escrowd.KVStore, tx escrowd.Tx, next escrowd.Deliverer) (_ *escrowd.DeliverResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked(ctx, tx, p)
		}
	}()
	return next.Deliver(ctx, store, tx)
}

func panicked(ctx escrowd.Context, tx escrowd.Tx, p interface{}) error {
	path := "(missing)"
	if tx != nil {
		path = escrowd.GetPath(tx)
	}
	err := errors.Wrapf(errors.ErrPanic, "%s: %v", path, p)
	escrowd.GetLogger(ctx).Error("handler panic", "path", path, "err", err)
	return err
}
