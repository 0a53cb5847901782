package app

import (
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/commands"
	"github.com/iov-one/escrowd/x/cash"
	"github.com/iov-one/escrowd/x/escrow"
	"github.com/iov-one/escrowd/x/sigs"
)

const exampleChainID = "testgen-chain"

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	seller := sigs.PrivateKeyFromSeed(make([]byte, 32))
	buyerSeed := make([]byte, 32)
	buyerSeed[0] = 1
	buyer := sigs.PrivateKeyFromSeed(buyerSeed)
	arbiter := sigs.PrivateKeyFromSeed(append(make([]byte, 31), 2)).PublicKey().Address()

	meta := &escrowd.Metadata{Schema: 1}
	create := &escrow.CreateMsg{
		Metadata:             meta,
		Seller:               seller.PublicKey().Address(),
		ID:                   1,
		Buyer:                buyer.PublicKey().Address(),
		Arbiter:              arbiter,
		Asset:                "IOV",
		Amount:               100,
		AutoCompleteDuration: 3600,
	}
	fund := &escrow.FundMsg{
		Metadata:     meta,
		Seller:       seller.PublicKey().Address(),
		ID:           1,
		Asset:        "IOV",
		TermsVersion: 1,
	}
	send := &cash.SendMsg{
		Metadata:    meta,
		Source:      buyer.PublicKey().Address(),
		Destination: seller.PublicKey().Address(),
		Amount:      coin.NewCoinp(10, "IOV"),
		Memo:        "testgen",
	}

	createTx := &Tx{Msg: create}
	if err := createTx.Sign(seller, exampleChainID, 0); err != nil {
		panic(err)
	}
	fundTx := &Tx{Msg: fund}
	if err := fundTx.Sign(buyer, exampleChainID, 0); err != nil {
		panic(err)
	}

	key := escrow.AgreementKey(seller.PublicKey().Address(), 1)
	agreement := &escrow.Agreement{
		Metadata:             meta,
		State:                escrow.StateFunded,
		ID:                   1,
		Seller:               seller.PublicKey().Address(),
		Buyer:                create.Buyer,
		Arbiter:              arbiter,
		Asset:                "IOV",
		Amount:               100,
		AutoCompleteDuration: 3600,
		TermsVersion:         1,
		Vault:                escrow.VaultAddress(key),
	}

	return []commands.Example{
		{Filename: "create_msg", Obj: create},
		{Filename: "fund_msg", Obj: fund},
		{Filename: "send_msg", Obj: send},
		{Filename: "create_tx", Obj: createTx},
		{Filename: "fund_tx", Obj: fundTx},
		{Filename: "agreement", Obj: agreement},
	}
}
