package events

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

var (
	testToken0 = common.HexToAddress("0x4200000000000000000000000000000000000006")
	testToken1 = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testPool   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func uintTopic(value uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(value))
}

func addressWord(addr common.Address) []byte {
	return common.BytesToHash(addr.Bytes()).Bytes()
}

func v3PoolCreatedLog(fee uint64) types.Log {
	data := append(uintTopic(200).Bytes(), addressWord(testPool)...)
	return types.Log{
		Address:     common.HexToAddress("0x33128a8fC17869897dcE68Ed026d694621f6FDfD"),
		Topics:      []common.Hash{TopicPoolCreatedV3, addressTopic(testToken0), addressTopic(testToken1), uintTopic(fee)},
		Data:        data,
		BlockNumber: 12345,
		TxHash:      common.HexToHash("0xabc1"),
		Index:       7,
	}
}

func v2PairCreatedLog() types.Log {
	data := append(addressWord(testPool), uintTopic(42).Bytes()...)
	return types.Log{
		Address:     common.HexToAddress("0x8909Dc15e40173Ff4699343b6eB8132c65e18eC6"),
		Topics:      []common.Hash{TopicPairCreatedV2, addressTopic(testToken0), addressTopic(testToken1)},
		Data:        data,
		BlockNumber: 12346,
		TxHash:      common.HexToHash("0xabc2"),
	}
}

func transferLog(token, from, to common.Address, value uint64) types.Log {
	return types.Log{
		Address: token,
		Topics:  []common.Hash{TopicTransfer, addressTopic(from), addressTopic(to)},
		Data:    uintTopic(value).Bytes(),
	}
}

func TestDecodeV3PoolCreated(t *testing.T) {
	dec := NewDecoder(NewRegistry())

	pool, ok := dec.DecodePoolCreation(v3PoolCreatedLog(10000))
	if !ok {
		t.Fatalf("decode failed")
	}
	if pool.Pool != testPool {
		t.Fatalf("pool mismatch: %s", pool.Pool.Hex())
	}
	if pool.Token0 != testToken0 || pool.Token1 != testToken1 {
		t.Fatalf("token mismatch: %+v", pool)
	}
	if pool.Fee != 10000 {
		t.Fatalf("fee mismatch: %d", pool.Fee)
	}
	if pool.BlockNumber != 12345 || pool.LogIndex != 7 {
		t.Fatalf("position mismatch: %+v", pool)
	}
}

func TestDecodeV2PairCreated(t *testing.T) {
	dec := NewDecoder(NewRegistry())

	pool, ok := dec.DecodePoolCreation(v2PairCreatedLog())
	if !ok {
		t.Fatalf("decode failed")
	}
	if pool.Pool != testPool {
		t.Fatalf("pair address mismatch: %s", pool.Pool.Hex())
	}
	if pool.Fee != 3000 {
		t.Fatalf("default fee mismatch: %d", pool.Fee)
	}
}

func TestDecodeTransferAndMint(t *testing.T) {
	dec := NewDecoder(NewRegistry())
	minter := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")

	transfer, ok := dec.DecodeTransfer(transferLog(testToken1, common.Address{}, minter, 1_000_000))
	if !ok {
		t.Fatalf("decode failed")
	}
	if !transfer.IsMint() {
		t.Fatalf("zero-address origin should be a mint")
	}
	if transfer.Token != testToken1 || transfer.To != minter {
		t.Fatalf("transfer mismatch: %+v", transfer)
	}
	if transfer.Value.Uint64() != 1_000_000 {
		t.Fatalf("value mismatch: %s", transfer.Value)
	}

	ordinary, ok := dec.DecodeTransfer(transferLog(testToken1, minter, testToken0, 5))
	if !ok {
		t.Fatalf("decode failed")
	}
	if ordinary.IsMint() {
		t.Fatalf("non-zero origin must not be a mint")
	}
}

func TestDecodeMalformedLogs(t *testing.T) {
	dec := NewDecoder(NewRegistry())

	cases := map[string]types.Log{
		"no topics":       {},
		"unknown topic0":  {Topics: []common.Hash{common.HexToHash("0xdead")}},
		"missing indexed": {Topics: []common.Hash{TopicPoolCreatedV3, addressTopic(testToken0)}},
		"truncated data": {
			Topics: []common.Hash{TopicPoolCreatedV3, addressTopic(testToken0), addressTopic(testToken1), uintTopic(500)},
			Data:   uintTopic(1).Bytes(),
		},
		"transfer without data": {
			Topics: []common.Hash{TopicTransfer, addressTopic(testToken0), addressTopic(testToken1)},
		},
	}

	for name, lg := range cases {
		if _, ok := dec.Decode(lg); ok {
			t.Fatalf("%s: expected decode to be skipped", name)
		}
	}
}

func TestDecodeTypedMismatch(t *testing.T) {
	dec := NewDecoder(NewRegistry())

	if _, ok := dec.DecodeTransfer(v3PoolCreatedLog(500)); ok {
		t.Fatalf("pool creation must not decode as transfer")
	}
	if _, ok := dec.DecodePoolCreation(transferLog(testToken1, common.Address{}, testToken0, 1)); ok {
		t.Fatalf("transfer must not decode as pool creation")
	}
}

func TestDecodeReturnsRecordTypes(t *testing.T) {
	dec := NewDecoder(NewRegistry())

	rec, ok := dec.Decode(v3PoolCreatedLog(500))
	if !ok {
		t.Fatalf("decode failed")
	}
	if _, isPool := rec.(model.PoolCreation); !isPool {
		t.Fatalf("expected PoolCreation, got %T", rec)
	}

	rec, ok = dec.Decode(transferLog(testToken1, common.Address{}, testToken0, 1))
	if !ok {
		t.Fatalf("decode failed")
	}
	if _, isTransfer := rec.(model.Transfer); !isTransfer {
		t.Fatalf("expected Transfer, got %T", rec)
	}
}
