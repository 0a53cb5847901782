package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest/assert"
)

type myConfig struct {
	Number int64  `json:"number"`
	Text   string `json:"text"`
}

func (c *myConfig) Validate() error {
	if c.Number < 0 {
		return errors.Wrap(errors.ErrInput, "negative number")
	}
	return nil
}

func (c *myConfig) Marshal() ([]byte, error) {
	var w escrowd.ProtoWriter
	w.Varint(1, c.Number)
	w.String(2, c.Text)
	return w.Bytes(), nil
}

func (c *myConfig) Unmarshal(raw []byte) error {
	*c = myConfig{}
	r := escrowd.NewProtoReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			c.Number = r.Varint()
		case 2:
			c.Text = r.Text()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		Conf        *myConfig
		WantSaveErr *errors.Error
	}{
		"valid": {
			Conf: &myConfig{Number: 852151421, Text: "foobar"},
		},
		"zero value": {
			Conf: &myConfig{},
		},
		"invalid configuration cannot be saved": {
			Conf:        &myConfig{Number: -1},
			WantSaveErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "mypkg", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				return
			}

			var got myConfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, *tc.Conf, got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var c myConfig
	if err := Load(db, "foo", &c); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %s", err)
	}

	// A zero value configuration of another package is not a match.
	assert.Nil(t, Save(db, "bar", &myConfig{}))
	if err := Load(db, "foo", &c); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.Nil(t, Load(db, "bar", &c))
}

func TestInitConfig(t *testing.T) {
	cases := map[string]struct {
		Genesis string
		WantErr *errors.Error
		Want    myConfig
	}{
		"configuration loaded": {
			Genesis: `{"conf": {"mypkg": {"number": 7, "text": "seven"}}}`,
			Want:    myConfig{Number: 7, Text: "seven"},
		},
		"missing package configuration": {
			Genesis: `{"conf": {"otherpkg": {"number": 7}}}`,
			WantErr: errors.ErrNotFound,
		},
		"invalid configuration": {
			Genesis: `{"conf": {"mypkg": {"number": -4}}}`,
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
			var c myConfig
			if err := InitConfig(db, opts, "mypkg", &c); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if tc.WantErr != nil {
				return
			}
			var got myConfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.Want, got)
		})
	}
}
