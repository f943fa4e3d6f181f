package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// Decoder parses raw logs into typed records using the registry's
// per-signature layout rules.
type Decoder struct {
	reg *Registry
}

func NewDecoder(reg *Registry) *Decoder {
	return &Decoder{reg: reg}
}

// Registry exposes the decoder's signature registry.
func (d *Decoder) Registry() *Registry {
	return d.reg
}

// Decode classifies lg by exact topic0 match and returns either a
// model.PoolCreation or a model.Transfer. Malformed logs (unknown
// signature, wrong topic count, truncated data) return ok=false and
// are skipped by callers, never treated as fatal.
func (d *Decoder) Decode(lg types.Log) (rec interface{}, ok bool) {
	if len(lg.Topics) == 0 {
		return nil, false
	}
	sig, found := d.reg.Lookup(lg.Topics[0])
	if !found {
		return nil, false
	}
	if len(lg.Topics) != sig.Layout.TopicCount {
		return nil, false
	}
	if len(lg.Data) < sig.Layout.MinDataWords*32 {
		return nil, false
	}

	switch sig.Kind {
	case KindPoolCreation:
		return d.decodePoolCreation(sig, lg)
	case KindTransfer:
		return d.decodeTransfer(lg)
	default:
		return nil, false
	}
}

// DecodePoolCreation decodes lg as a pool-creation record, returning
// ok=false for logs that are not well-formed pool creations.
func (d *Decoder) DecodePoolCreation(lg types.Log) (model.PoolCreation, bool) {
	rec, ok := d.Decode(lg)
	if !ok {
		return model.PoolCreation{}, false
	}
	pool, ok := rec.(model.PoolCreation)
	return pool, ok
}

// DecodeTransfer decodes lg as a transfer record, returning ok=false
// for logs that are not well-formed transfers.
func (d *Decoder) DecodeTransfer(lg types.Log) (model.Transfer, bool) {
	rec, ok := d.Decode(lg)
	if !ok {
		return model.Transfer{}, false
	}
	transfer, ok := rec.(model.Transfer)
	return transfer, ok
}

func (d *Decoder) decodePoolCreation(sig Signature, lg types.Log) (interface{}, bool) {
	fee := sig.Layout.DefaultFee
	if sig.Layout.FeeTopicIndex >= 0 {
		if sig.Layout.FeeTopicIndex >= len(lg.Topics) {
			return nil, false
		}
		feeWord := new(big.Int).SetBytes(lg.Topics[sig.Layout.FeeTopicIndex].Bytes())
		if !feeWord.IsUint64() || feeWord.Uint64() > 0xFFFFFF {
			return nil, false
		}
		fee = uint32(feeWord.Uint64())
	}

	poolWord := sig.Layout.PoolDataWord
	start := poolWord * 32
	if len(lg.Data) < start+32 {
		return nil, false
	}

	return model.PoolCreation{
		Pool:        wordToAddress(lg.Data[start : start+32]),
		Token0:      topicToAddress(lg.Topics[1]),
		Token1:      topicToAddress(lg.Topics[2]),
		Fee:         fee,
		BlockNumber: lg.BlockNumber,
		TxHash:      lg.TxHash,
		LogIndex:    lg.Index,
	}, true
}

func (d *Decoder) decodeTransfer(lg types.Log) (interface{}, bool) {
	if len(lg.Data) < 32 {
		return nil, false
	}
	return model.Transfer{
		Token: lg.Address,
		From:  topicToAddress(lg.Topics[1]),
		To:    topicToAddress(lg.Topics[2]),
		Value: new(big.Int).SetBytes(lg.Data[:32]),
	}, true
}

// topicToAddress extracts the low 20 bytes of a 32-byte topic word.
func topicToAddress(topic common.Hash) common.Address {
	return common.BytesToAddress(topic.Bytes()[12:])
}

func wordToAddress(word []byte) common.Address {
	return common.BytesToAddress(word[12:32])
}
