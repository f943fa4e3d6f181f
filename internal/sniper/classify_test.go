package sniper

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/events"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

var (
	weth    = common.HexToAddress("0x4200000000000000000000000000000000000006")
	tkn     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	other   = common.HexToAddress("0x5555555555555555555555555555555555555555")
	poolAdr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	txHash  = common.HexToHash("0xabc0000000000000000000000000000000000000000000000000000000000000")
)

func topicOf(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func poolCreatedLog(token0, token1 common.Address, fee uint64) types.Log {
	word := func(v uint64) []byte { return common.BigToHash(new(big.Int).SetUint64(v)).Bytes() }
	data := append(word(200), common.BytesToHash(poolAdr.Bytes()).Bytes()...)
	return types.Log{
		Topics:      []common.Hash{events.TopicPoolCreatedV3, topicOf(token0), topicOf(token1), common.BigToHash(new(big.Int).SetUint64(fee))},
		Data:        data,
		BlockNumber: 500,
		TxHash:      txHash,
	}
}

func mintLog(token, to common.Address, value uint64) types.Log {
	return types.Log{
		Address: token,
		Topics:  []common.Hash{events.TopicTransfer, topicOf(common.Address{}), topicOf(to)},
		Data:    common.BigToHash(new(big.Int).SetUint64(value)).Bytes(),
	}
}

func ordinaryTransferLog(token, from, to common.Address, value uint64) types.Log {
	return types.Log{
		Address: token,
		Topics:  []common.Hash{events.TopicTransfer, topicOf(from), topicOf(to)},
		Data:    common.BigToHash(new(big.Int).SetUint64(value)).Bytes(),
	}
}

func decodedPool(t *testing.T, dec *events.Decoder, lg types.Log) model.PoolCreation {
	t.Helper()
	pool, ok := dec.DecodePoolCreation(lg)
	if !ok {
		t.Fatalf("pool creation log did not decode")
	}
	return pool
}

func TestClassifyFreshLaunch(t *testing.T) {
	dec := events.NewDecoder(events.NewRegistry())
	creation := poolCreatedLog(weth, tkn, 10000)
	pool := decodedPool(t, dec, creation)

	dead := common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	txLogs := []types.Log{
		creation,
		mintLog(tkn, dead, 1_000_000),
	}

	verdict := Classify(pool, txLogs, dec)
	if !verdict.FreshLaunch {
		t.Fatalf("expected fresh launch")
	}
	if _, ok := verdict.Minted[tkn]; !ok {
		t.Fatalf("minted set missing %s", tkn.Hex())
	}
	if len(verdict.Minted) != 1 {
		t.Fatalf("unexpected minted set size %d", len(verdict.Minted))
	}
	if verdict.Token0Minted || !verdict.Token1Minted {
		t.Fatalf("side flags wrong: %+v", verdict)
	}
}

func TestClassifyNoMints(t *testing.T) {
	dec := events.NewDecoder(events.NewRegistry())
	creation := poolCreatedLog(weth, tkn, 3000)
	pool := decodedPool(t, dec, creation)

	txLogs := []types.Log{
		creation,
		ordinaryTransferLog(tkn, other, weth, 100),
		ordinaryTransferLog(weth, weth, other, 200),
	}

	verdict := Classify(pool, txLogs, dec)
	if verdict.FreshLaunch {
		t.Fatalf("ordinary transfers must not count as a launch")
	}
	if len(verdict.Minted) != 0 {
		t.Fatalf("minted set should be empty: %v", verdict.Minted)
	}
}

func TestClassifyUnrelatedMintIgnoredForSides(t *testing.T) {
	dec := events.NewDecoder(events.NewRegistry())
	creation := poolCreatedLog(weth, tkn, 500)
	pool := decodedPool(t, dec, creation)

	// A different token minted in the same transaction is recorded but
	// does not mark either pool side.
	txLogs := []types.Log{
		creation,
		mintLog(other, tkn, 777),
	}

	verdict := Classify(pool, txLogs, dec)
	if _, ok := verdict.Minted[other]; !ok {
		t.Fatalf("unrelated mint should still appear in minted set")
	}
	if verdict.Token0Minted || verdict.Token1Minted {
		t.Fatalf("unrelated mint must not mark pool sides")
	}
}

func TestClassifyBothSidesFresh(t *testing.T) {
	dec := events.NewDecoder(events.NewRegistry())
	creation := poolCreatedLog(weth, tkn, 500)
	pool := decodedPool(t, dec, creation)

	txLogs := []types.Log{
		creation,
		mintLog(weth, other, 1),
		mintLog(tkn, other, 2),
	}

	verdict := Classify(pool, txLogs, dec)
	if !verdict.Token0Minted || !verdict.Token1Minted {
		t.Fatalf("both sides minted: %+v", verdict)
	}
}

func TestClassifyMalformedLogsSkipped(t *testing.T) {
	dec := events.NewDecoder(events.NewRegistry())
	creation := poolCreatedLog(weth, tkn, 500)
	pool := decodedPool(t, dec, creation)

	txLogs := []types.Log{
		creation,
		{Topics: []common.Hash{events.TopicTransfer}},
		mintLog(tkn, other, 3),
	}

	verdict := Classify(pool, txLogs, dec)
	if !verdict.FreshLaunch || !verdict.Token1Minted {
		t.Fatalf("malformed sibling must not poison the verdict: %+v", verdict)
	}
}
