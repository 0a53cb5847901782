package server

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireKey fails unless the app_state defines given key.
type requireKey string

func (k requireKey) FromGenesis(opts escrowd.Options, db escrowd.KVStore) error {
	if _, ok := opts[string(k)]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "key %q", string(k))
	}
	return db.Set([]byte(k), []byte("ok"))
}

func TestValidateGenesis(t *testing.T) {
	home, cleanup := tempHome(t)
	defer cleanup()

	write := func(name, content string) string {
		path := filepath.Join(home, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))
		return path
	}
	good := write("good.json", `{"chain_id": "test-chain", "app_state": {"cash": []}}`)
	missingKey := write("missing.json", `{"app_state": {"other": []}}`)
	noState := write("nostate.json", `{"chain_id": "test-chain"}`)
	broken := write("broken.json", `{"app_state": `)

	cases := map[string]struct {
		paths   []string
		wantErr *errors.Error
	}{
		"valid":             {paths: []string{good}},
		"no files":          {wantErr: errors.ErrInput},
		"initializer fails": {paths: []string{good, missingKey}, wantErr: errors.ErrNotFound},
		"missing app_state": {paths: []string{noState}, wantErr: errors.ErrEmpty},
		"invalid json":      {paths: []string{broken}, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ValidateGenesis(requireKey("cash"), tc.paths)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}
}
