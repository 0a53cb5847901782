package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/commands/server"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Name is returned by the abci Info call.
const Name = "escrowd"

// genesisSupply is the balance of the development account created by
// GenInitOptions.
const genesisSupply = 123456789

type appState struct {
	Cash   []cash.GenesisAccount     `json:"cash"`
	Conf   map[string]interface{}    `json:"conf"`
	Escrow []escrow.GenesisAgreement `json:"escrow,omitempty"`
}

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode
//
// You can set a ticker and an address as arguments. Without an address a
// new key is generated and printed out.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "IOV"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsTicker(ticker) {
			return nil, errors.Wrapf(errors.ErrInput, "invalid ticker %s", ticker)
		}
	}

	var addr escrowd.Address
	if len(args) > 1 {
		var err error
		if addr, err = escrowd.ParseAddress(args[1]); err != nil {
			return nil, errors.Wrap(err, "address")
		}
	} else {
		// if no address provided, auto-generate one
		// and print out the keys
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Println(keys)
	}

	state := appState{
		Cash: []cash.GenesisAccount{
			{Address: addr, Coins: []coin.Coin{coin.NewCoin(genesisSupply, ticker)}},
		},
		Conf: map[string]interface{}{
			"cash": cash.Configuration{
				Metadata: &escrowd.Metadata{Schema: 1},
				Owner:    addr,
				Tickers:  []string{ticker},
			},
		},
	}
	return json.MarshalIndent(state, "", "  ")
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "escrow.db")
	}

	application, err := Application(Name, Stack(options.Registerer), TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializers())
	if options.Logger != nil {
		application.WithLogger(options.Logger)
	}
	return application, nil
}

type output struct {
	Address escrowd.Address `json:"address"`
	Pubkey  string          `json:"pub_key"`
	Secret  string          `json:"secret"`
}

// GenerateCoinKey returns the address of a public key,
// along with a json representation of the keys.
// You can give coins to this address and
// import the keys in a client to use them
func GenerateCoinKey() (escrowd.Address, string, error) {
	privKey := sigs.GenPrivateKey()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{
		Address: addr,
		Pubkey:  hex.EncodeToString(pubKey),
		Secret:  hex.EncodeToString(privKey),
	}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(err, "cannot serialize keys")
	}
	return addr, string(keys), nil
}
