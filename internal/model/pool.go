package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolCreation is a decoded pool-creation event. It is built once per
// matching log and never mutated afterwards.
type PoolCreation struct {
	Pool        common.Address
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
}

// Transfer is a decoded ERC20 Transfer event. A transfer whose From is
// the zero address signifies a mint.
type Transfer struct {
	Token common.Address
	From  common.Address
	To    common.Address
	Value *big.Int
}

// IsMint reports whether the transfer represents newly issued supply.
func (t Transfer) IsMint() bool {
	return t.From == (common.Address{})
}

// Verdict is the freshness classification of one pool-creation event,
// valid only in the context of the transaction it was derived from.
type Verdict struct {
	FreshLaunch  bool
	Minted       map[common.Address]struct{}
	Token0Minted bool
	Token1Minted bool
}

// MintedList returns the minted token addresses as a slice.
func (v Verdict) MintedList() []common.Address {
	out := make([]common.Address, 0, len(v.Minted))
	for addr := range v.Minted {
		out = append(out, addr)
	}
	return out
}
