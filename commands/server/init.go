package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appStateKey = "app_state"
	chainIDKey  = "chain_id"
)

// GenOptions can parse command-line arguments to generate default
// app_state for the genesis file. This is application-specific.
type GenOptions func(args []string) (json.RawMessage, error)

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

// GenesisPath returns the location of the genesis file for given home
// directory.
func GenesisPath(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

// InitCmd will initialize the genesis file with proper app_state.
//
// A missing genesis file is created with a random chain id. A genesis
// file created by tendermint is extended with the app_state. A genesis
// file that already declares an app_state is never modified.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	genFile := GenesisPath(home)

	doc, err := loadGenesisDoc(genFile)
	if err != nil {
		return err
	}
	if len(doc[appStateKey]) != 0 {
		logger.Info("Genesis app_state already set, nothing to do", "path", genFile)
		return nil
	}
	if len(doc[chainIDKey]) == 0 {
		chainID, err := randomChainID()
		if err != nil {
			return err
		}
		raw, err := json.Marshal(chainID)
		if err != nil {
			return errors.Wrap(err, "chain id")
		}
		doc[chainIDKey] = raw
	}

	options, err := gen(args)
	if err != nil {
		return err
	}
	if !json.Valid(options) {
		return errors.Wrap(errors.ErrInput, "app_state is not valid JSON")
	}
	doc[appStateKey] = options

	if err := os.MkdirAll(filepath.Dir(genFile), 0755); err != nil {
		return errors.Wrap(err, "cannot create config directory")
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize genesis")
	}
	if err := ioutil.WriteFile(genFile, out, 0600); err != nil {
		return errors.Wrap(err, "cannot write genesis")
	}
	logger.Info("Genesis app_state written", "path", genFile)
	return nil
}

// loadGenesisDoc returns the content of the genesis file or an empty
// document if the file does not exist.
func loadGenesisDoc(filename string) (GenesisDoc, error) {
	bz, err := ioutil.ReadFile(filename)
	if os.IsNotExist(err) {
		return GenesisDoc{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot read genesis")
	}
	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if doc == nil {
		doc = GenesisDoc{}
	}
	return doc, nil
}

func randomChainID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "random")
	}
	id := fmt.Sprintf("test-chain-%s", hex.EncodeToString(b))
	if !escrowd.IsValidChainID(id) {
		return "", errors.Wrapf(errors.ErrHuman, "invalid chain id %q", id)
	}
	return id, nil
}
