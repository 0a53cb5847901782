package app

import (
	"reflect"

	"github.com/iov-one/escrowd"
)

// Decorators is an ordered list of decorators that is not yet bound to a
// handler. The first decorator is the outermost one.
type Decorators struct {
	chain []escrowd.Decorator
}

// ChainDecorators returns a list of given decorators. Nil values are
// skipped, so that an optional decorator can be passed unconditionally.
// The escrowd stack is built as
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     metrics, // nil when no registerer is configured
//     utils.NewSavepoint().OnCheck(),
//     sigs.NewDecorator(),
//     utils.NewSavepoint().OnDeliver(),
//   ).WithHandler(router)
func ChainDecorators(chain ...escrowd.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new list with given decorators appended. The receiver is
// not modified, so a common base can be extended more than once.
func (d Decorators) Chain(chain ...escrowd.Decorator) Decorators {
	all := make([]escrowd.Decorator, 0, len(d.chain)+len(chain))
	all = append(all, d.chain...)
	for _, dec := range chain {
		if !isNilDecorator(dec) {
			all = append(all, dec)
		}
	}
	return Decorators{chain: all}
}

func isNilDecorator(d escrowd.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler binds the list to the final handler. A transaction passes the
// decorators in order before it reaches h.
func (d Decorators) WithHandler(h escrowd.Handler) escrowd.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = decorated{decorator: d.chain[i], next: h}
	}
	return h
}

// decorated is a handler that runs the decorator around the next handler.
type decorated struct {
	decorator escrowd.Decorator
	next      escrowd.Handler
}

var _ escrowd.Handler = decorated{}

func (d decorated) Check(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.CheckResult, error) {
	return d.decorator.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx escrowd.Context, db escrowd.KVStore, tx escrowd.Tx) (*escrowd.DeliverResult, error) {
	return d.decorator.Deliver(ctx, db, tx, d.next)
}
