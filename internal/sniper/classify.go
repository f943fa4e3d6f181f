package sniper

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// LogDecoder turns raw logs into typed records. *events.Decoder is the
// production implementation.
type LogDecoder interface {
	Decode(lg types.Log) (interface{}, bool)
}

// Classify decides whether the pool's paired token was minted in the
// same transaction that created the pool. It is pure with respect to
// its inputs and performs no remote calls.
//
// txLogs must be the full log set of the pool creation's originating
// transaction. Mints of tokens unrelated to the pool's pair are
// recorded in the minted set but do not affect the per-side flags.
func Classify(pool model.PoolCreation, txLogs []types.Log, dec LogDecoder) model.Verdict {
	verdict := model.Verdict{Minted: make(map[common.Address]struct{})}
	poolEventSeen := false

	for _, lg := range txLogs {
		rec, ok := dec.Decode(lg)
		if !ok {
			continue
		}
		switch typed := rec.(type) {
		case model.PoolCreation:
			if typed.Pool == pool.Pool {
				poolEventSeen = true
			}
		case model.Transfer:
			if typed.IsMint() {
				verdict.Minted[typed.Token] = struct{}{}
			}
		}
	}

	verdict.FreshLaunch = poolEventSeen && len(verdict.Minted) > 0
	_, verdict.Token0Minted = verdict.Minted[pool.Token0]
	_, verdict.Token1Minted = verdict.Minted[pool.Token1]
	return verdict
}
