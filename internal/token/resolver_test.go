package token

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ERC20 method selectors.
var (
	selSymbol      = []byte{0x95, 0xd8, 0x9b, 0x41}
	selName        = []byte{0x06, 0xfd, 0xde, 0x03}
	selDecimals    = []byte{0x31, 0x3c, 0xe5, 0x67}
	selTotalSupply = []byte{0x18, 0x16, 0x0d, 0xdd}
)

// methodCaller routes calls by selector and counts every remote hit.
type methodCaller struct {
	responses map[string][]byte
	errs      map[string]error
	calls     int
}

func (m *methodCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	m.calls++
	key := string(msg.Data[:4])
	if err, ok := m.errs[key]; ok {
		return nil, err
	}
	if resp, ok := m.responses[key]; ok {
		return resp, nil
	}
	return nil, errors.New("execution reverted")
}

// abiString encodes a dynamic string return value.
func abiString(s string) []byte {
	out := make([]byte, 0, 96)
	out = append(out, common.BigToHash(big.NewInt(32)).Bytes()...)
	out = append(out, common.BigToHash(big.NewInt(int64(len(s)))).Bytes()...)
	padded := make([]byte, (len(s)+31)/32*32)
	copy(padded, s)
	return append(out, padded...)
}

// rawBytes32 encodes a fixed-width right-padded byte string.
func rawBytes32(s string) []byte {
	var word [32]byte
	copy(word[:], s)
	return word[:]
}

func uintWord(v uint64) []byte {
	return common.BigToHash(new(big.Int).SetUint64(v)).Bytes()
}

func stringTokenCaller() *methodCaller {
	return &methodCaller{responses: map[string][]byte{
		string(selSymbol):      abiString("NEWT"),
		string(selName):        abiString("New Token"),
		string(selDecimals):    uintWord(18),
		string(selTotalSupply): uintWord(1_000_000),
	}}
}

var probeAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")

func TestResolveStringMetadata(t *testing.T) {
	caller := stringTokenCaller()
	r := NewResolver(caller, nil, nil)

	meta, err := r.Resolve(context.Background(), probeAddr)
	require.NoError(t, err)
	assert.Equal(t, "NEWT", meta.Symbol)
	assert.Equal(t, "New Token", meta.Name)
	assert.Equal(t, uint8(18), meta.Decimals)
	assert.Equal(t, "1000000", meta.TotalSupply)
	assert.Equal(t, probeAddr.Hex(), meta.Address)
}

func TestResolveBytes32Fallback(t *testing.T) {
	// Symbol and name answer with raw fixed-width words; the dynamic
	// string decode fails first and the bytes32 shape is retried.
	caller := &methodCaller{responses: map[string][]byte{
		string(selSymbol):   rawBytes32("MKR"),
		string(selName):     rawBytes32("Maker"),
		string(selDecimals): uintWord(18),
	}}
	r := NewResolver(caller, nil, nil)

	meta, err := r.Resolve(context.Background(), probeAddr)
	require.NoError(t, err)
	assert.Equal(t, "MKR", meta.Symbol)
	assert.Equal(t, "Maker", meta.Name)
	assert.Equal(t, uint8(18), meta.Decimals)
	assert.Empty(t, meta.TotalSupply, "totalSupply is optional")
}

func TestResolveKnownTokenSkipsRemote(t *testing.T) {
	caller := &methodCaller{}
	r := NewResolver(caller, DefaultKnownTokens(), nil)

	meta, err := r.Resolve(context.Background(), WETHBase)
	require.NoError(t, err)
	assert.Equal(t, "WETH", meta.Symbol)
	assert.Zero(t, caller.calls, "known tokens must not trigger calls")
	assert.True(t, r.Known(WETHBase))
	assert.False(t, r.Known(probeAddr))
}

func TestResolveNonTokenAddress(t *testing.T) {
	caller := &methodCaller{} // every call reverts
	r := NewResolver(caller, nil, nil)

	_, err := r.Resolve(context.Background(), probeAddr)
	assert.ErrorIs(t, err, ErrNotToken)
}

func TestResolveCachesSuccessAndFailure(t *testing.T) {
	caller := stringTokenCaller()
	r := NewResolver(caller, nil, nil)

	_, err := r.Resolve(context.Background(), probeAddr)
	require.NoError(t, err)
	after := caller.calls

	meta, err := r.Resolve(context.Background(), probeAddr)
	require.NoError(t, err)
	assert.Equal(t, "NEWT", meta.Symbol)
	assert.Equal(t, after, caller.calls, "second resolve must hit the cache")

	// Failures are cached too and never retried.
	failing := &methodCaller{}
	r = NewResolver(failing, nil, nil)
	other := common.HexToAddress("0x3333333333333333333333333333333333333333")

	_, err = r.Resolve(context.Background(), other)
	require.ErrorIs(t, err, ErrNotToken)
	failed := failing.calls

	_, err = r.Resolve(context.Background(), other)
	require.ErrorIs(t, err, ErrNotToken)
	assert.Equal(t, failed, failing.calls)
}

func TestResolveRejectsGarbagePayload(t *testing.T) {
	caller := &methodCaller{responses: map[string][]byte{
		string(selSymbol): bytes.Repeat([]byte{0xff}, 32),
	}}
	r := NewResolver(caller, nil, nil)

	_, err := r.Resolve(context.Background(), probeAddr)
	assert.ErrorIs(t, err, ErrNotToken)
}
