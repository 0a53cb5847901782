package app

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Querier is the query part of an abci.Application. Both a full
// application and a StoreApp implement it.
type Querier interface {
	Query(abci.RequestQuery) abci.ResponseQuery
}

var (
	_ Querier = (abci.Application)(nil)
	_ Querier = (*StoreApp)(nil)
)

// ABCIStore exposes the abci.Query interface as a ReadOnlyKVStore. It can
// be wrapped with a bucket to reuse key, index and parse logic on the
// client side.
type ABCIStore struct {
	app Querier
}

var _ escrowd.ReadOnlyKVStore = (*ABCIStore)(nil)

func NewABCIStore(app Querier) *ABCIStore {
	return &ABCIStore{app: app}
}

// Get will query for exactly one value over the abci store.
func (a *ABCIStore) Get(key []byte) ([]byte, error) {
	query := a.app.Query(abci.RequestQuery{
		Path: "/",
		Data: key,
	})
	if query.Code != 0 {
		return nil, errors.Wrapf(errors.ErrHuman, "query failed with code %d: %s", query.Code, query.Log)
	}
	var value ResultSet
	if err := value.Unmarshal(query.Value); err != nil {
		return nil, errors.Wrap(err, "unmarshal result set")
	}
	switch len(value.Results) {
	case 0:
		return nil, nil
	case 1:
		return value.Results[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrState, "expected one result, got %d", len(value.Results))
	}
}

// Has returns true if the given key in in the abci app store
func (a *ABCIStore) Has(key []byte) (bool, error) {
	v, err := a.Get(key)
	return len(v) > 0, err
}

// QueryModels runs a query over the abci interface and returns the joined
// key/value pairs.
func QueryModels(app Querier, path string, data []byte) ([]escrowd.Model, error) {
	query := app.Query(abci.RequestQuery{
		Path: path,
		Data: data,
	})
	if query.Code != 0 {
		return nil, errors.Wrapf(errors.ErrHuman, "query failed with code %d: %s", query.Code, query.Log)
	}
	return toModels(query.Key, query.Value)
}

func toModels(keys, values []byte) ([]escrowd.Model, error) {
	var k, v ResultSet
	if err := k.Unmarshal(keys); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal keys")
	}
	if err := v.Unmarshal(values); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal values")
	}
	return JoinResults(&k, &v)
}
