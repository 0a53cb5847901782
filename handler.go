package escrowd

import (
	"bytes"
	"encoding/json"

	"github.com/iov-one/escrowd/errors"
)

// Handler is a core engine that can process a few specific messages. This
// could represent "create an agreement", or "send tokens".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction. It is its own
// interface to allow better type controls in the next arguments in
// Decorator.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality like
// authentication or metrics to many Handlers.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler, the setup side of a
// Router.
type Registry interface {
	Handle(path string, h Handler)
}

// Options are the app options. Each extension can look up its key and parse
// the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key, and parses the json
// into the given obj. Returns an error if it cannot parse. Noop and no error
// if key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Stream expects a json list under given key and returns a function that
// decodes one element of that list at a time. When all elements are
// consumed, the stream function returns ErrEmpty. Any call after an error
// was returned fails with ErrState.
//
// Use this instead of ReadOptions for lists that can be huge, such as all
// genesis accounts.
func (o Options) Stream(key string) (func(dst interface{}) error, error) {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil, errors.Wrapf(errors.ErrEmpty, "no %q key", key)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	var started, closed bool
	next := func(dst interface{}) error {
		if closed {
			return errors.Wrap(errors.ErrState, "stream closed")
		}
		if !started {
			started = true
			tok, err := dec.Token()
			if err != nil {
				closed = true
				return errors.Wrapf(errors.ErrInput, "read token: %s", err)
			}
			if d, ok := tok.(json.Delim); !ok || d != '[' {
				closed = true
				return errors.Wrapf(errors.ErrInput, "list expected under %q", key)
			}
		}
		if !dec.More() {
			closed = true
			return errors.ErrEmpty
		}
		if err := dec.Decode(dst); err != nil {
			closed = true
			return errors.Wrapf(errors.ErrInput, "decode: %s", err)
		}
		return nil
	}
	return next, nil
}

// Initializer implementations are used to initialize extensions from genesis
// file contents.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...Initializer) Initializer {
	return chainInitializer(inits)
}

type chainInitializer []Initializer

func (c chainInitializer) FromGenesis(opts Options, kv KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
