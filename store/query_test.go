package store

import (
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestRawQuery(t *testing.T) {
	qr := escrowd.NewQueryRouter()
	RegisterQuery(qr)
	h := qr.Handler("/")
	if h == nil {
		t.Fatal("raw query not registered")
	}

	db := MemStore()
	assert.Nil(t, db.Set([]byte("foo"), []byte("bar")))

	res, err := h.Query(db, escrowd.KeyQueryMod, []byte("foo"))
	assert.Nil(t, err)
	assert.Equal(t, []escrowd.Model{escrowd.Pair([]byte("foo"), []byte("bar"))}, res)

	res, err = h.Query(db, escrowd.KeyQueryMod, []byte("missing"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))

	_, err = h.Query(db, "prefix", []byte("f"))
	assert.IsErr(t, errors.ErrInput, err)

	_, err = h.Query(db, escrowd.KeyQueryMod, nil)
	assert.IsErr(t, errors.ErrEmpty, err)
}
