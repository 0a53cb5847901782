package store

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// RegisterQuery exposes raw key lookups under the "/" path. The query data
// is the full store key, including any bucket prefix.
func RegisterQuery(qr escrowd.QueryRouter) {
	qr.Register("/", rawQuery{})
}

type rawQuery struct{}

var _ escrowd.QueryHandler = rawQuery{}

func (rawQuery) Query(db escrowd.ReadOnlyKVStore, mod string, data []byte) ([]escrowd.Model, error) {
	if mod != escrowd.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "key")
	}
	val, err := db.Get(data)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	return []escrowd.Model{escrowd.Pair(data, val)}, nil
}
