package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TradeIntent is a fully sized swap request. Constructed fresh per
// trade attempt and never reused.
type TradeIntent struct {
	TokenIn      common.Address
	TokenOut     common.Address
	AmountIn     *big.Int
	AmountOutMin *big.Int
	Fee          uint32
	Deadline     *big.Int
}

// TradeResult reports the outcome of one submission attempt.
type TradeResult struct {
	Success   bool
	TxHash    common.Hash
	AmountOut *big.Int
	Reason    string
}
