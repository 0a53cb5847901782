package cash

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestGenesis(t *testing.T) {
	const genesis = `{
		"conf": {
			"cash": {
				"metadata": {"schema": 1},
				"tickers": ["IOV", "ETH"]
			}
		},
		"cash": [
			{
				"address": "C30A2424104F542576EF01FECA2FF558F5EAA61A",
				"coins": ["50 IOV", {"ticker": "ETH", "amount": 7}]
			},
			{
				"address": "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0",
				"coins": ["1 IOV"]
			}
		]
	}`
	var opts escrowd.Options
	if err := json.Unmarshal([]byte(genesis), &opts); err != nil {
		t.Fatalf("cannot unmarshal genesis: %s", err)
	}

	db := store.MemStore()
	ctrl := NewController(NewAccountBucket())
	if err := NewInitializer(ctrl).FromGenesis(opts, db); err != nil {
		t.Fatalf("cannot load genesis: %s", err)
	}

	addr, err := escrowd.ParseAddress("C30A2424104F542576EF01FECA2FF558F5EAA61A")
	assert.Nil(t, err)
	bal, err := ctrl.Balance(db, addr, "IOV")
	assert.Nil(t, err)
	assert.Equal(t, uint64(50), bal)
	bal, err = ctrl.Balance(db, addr, "ETH")
	assert.Nil(t, err)
	assert.Equal(t, uint64(7), bal)

	conf, err := loadConf(db)
	assert.Nil(t, err)
	assert.Equal(t, true, conf.Allows("ETH"))
	assert.Equal(t, false, conf.Allows("BTC"))
}

func TestGenesisErrors(t *testing.T) {
	cases := map[string]struct {
		Genesis string
		WantErr *errors.Error
	}{
		"no accounts": {
			Genesis: `{"conf": {"cash": {"metadata": {"schema": 1}, "tickers": ["IOV"]}}}`,
			WantErr: nil,
		},
		"missing configuration": {
			Genesis: `{"conf": {}, "cash": []}`,
			WantErr: errors.ErrNotFound,
		},
		"ticker not configured": {
			Genesis: `{
				"conf": {"cash": {"metadata": {"schema": 1}, "tickers": ["IOV"]}},
				"cash": [{"address": "C30A2424104F542576EF01FECA2FF558F5EAA61A", "coins": ["3 ETH"]}]
			}`,
			WantErr: errors.ErrInput,
		},
		"accounts not a list": {
			Genesis: `{
				"conf": {"cash": {"metadata": {"schema": 1}, "tickers": ["IOV"]}},
				"cash": {"address": "C30A2424104F542576EF01FECA2FF558F5EAA61A"}
			}`,
			WantErr: errors.ErrInput,
		},
		"missing address": {
			Genesis: `{
				"conf": {"cash": {"metadata": {"schema": 1}, "tickers": ["IOV"]}},
				"cash": [{"coins": ["3 IOV"]}]
			}`,
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts escrowd.Options
			if err := json.Unmarshal([]byte(tc.Genesis), &opts); err != nil {
				t.Fatalf("cannot unmarshal genesis: %s", err)
			}
			db := store.MemStore()
			err := NewInitializer(NewController(NewAccountBucket())).FromGenesis(opts, db)
			assert.IsErr(t, tc.WantErr, err)
		})
	}
}
