package trade

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

type fakeBackend struct {
	nonce    uint64
	gasPrice *big.Int
	sendErr  error

	sentTx *types.Transaction
}

func (f *fakeBackend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	if f.gasPrice == nil {
		return big.NewInt(1_000_000_000), nil
	}
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentTx = tx
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	return nil, errors.New("not found")
}

// A throwaway key: never funded, test-only.
const testKeyHex = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

func sampleIntent() model.TradeIntent {
	return model.TradeIntent{
		TokenIn:      wethAddr,
		TokenOut:     tknAddr,
		AmountIn:     big.NewInt(100_000_000_000_000),
		AmountOutMin: big.NewInt(475_000),
		Fee:          10000,
		Deadline:     big.NewInt(1_900_000_000),
	}
}

func newTestExecutor(t *testing.T, backend Backend, cfg ExecutorConfig) *Executor {
	t.Helper()
	signer, err := NewKeySigner(testKeyHex)
	require.NoError(t, err)
	if cfg.Router == (common.Address{}) {
		cfg.Router = common.HexToAddress("0x2626664c2603336E57B271c5C0b26F421741e481")
	}
	if cfg.ChainID == nil {
		cfg.ChainID = big.NewInt(8453)
	}
	cfg.WETH = wethAddr
	return NewExecutor(cfg, backend, signer, nil)
}

func TestExecuteDryRunNeverSubmits(t *testing.T) {
	backend := &fakeBackend{}
	exec := NewExecutor(ExecutorConfig{DryRun: true}, backend, nil, nil)

	res := exec.Execute(context.Background(), sampleIntent())
	assert.True(t, res.Success)
	assert.Equal(t, "dry run", res.Reason)
	assert.Nil(t, backend.sentTx, "dry run must not reach the backend")
}

func TestExecuteSubmitFailureIsNonFatal(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("nonce too low")}
	exec := newTestExecutor(t, backend, ExecutorConfig{})

	res := exec.Execute(context.Background(), sampleIntent())
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "nonce too low")
}

func TestExecuteWrappedNativeSpendRidesAsValue(t *testing.T) {
	backend := &fakeBackend{}
	exec := newTestExecutor(t, backend, ExecutorConfig{})

	intent := sampleIntent()
	res := exec.Execute(context.Background(), intent)
	require.True(t, res.Success, res.Reason)
	require.NotNil(t, backend.sentTx)

	assert.Equal(t, 0, backend.sentTx.Value().Cmp(intent.AmountIn))
	assert.NotEqual(t, common.Hash{}, res.TxHash)
}

func TestExecuteTokenSpendCarriesNoValue(t *testing.T) {
	backend := &fakeBackend{}
	exec := newTestExecutor(t, backend, ExecutorConfig{})

	intent := sampleIntent()
	intent.TokenIn, intent.TokenOut = intent.TokenOut, intent.TokenIn

	res := exec.Execute(context.Background(), intent)
	require.True(t, res.Success, res.Reason)
	require.NotNil(t, backend.sentTx)
	assert.Equal(t, 0, backend.sentTx.Value().Sign())
}

func TestExecuteGasBoostAndCap(t *testing.T) {
	backend := &fakeBackend{gasPrice: big.NewInt(1_000_000_000)}
	exec := newTestExecutor(t, backend, ExecutorConfig{GasBoostPct: 400})

	res := exec.Execute(context.Background(), sampleIntent())
	require.True(t, res.Success, res.Reason)
	assert.Equal(t, "4000000000", backend.sentTx.GasPrice().String())

	// Capped when the boosted price exceeds the configured ceiling.
	backend = &fakeBackend{gasPrice: big.NewInt(1_000_000_000)}
	exec = newTestExecutor(t, backend, ExecutorConfig{
		GasBoostPct: 400,
		MaxGasPrice: big.NewInt(2_500_000_000),
	})
	res = exec.Execute(context.Background(), sampleIntent())
	require.True(t, res.Success, res.Reason)
	assert.Equal(t, "2500000000", backend.sentTx.GasPrice().String())
}

func TestExecuteWithoutSignerFails(t *testing.T) {
	exec := NewExecutor(ExecutorConfig{ChainID: big.NewInt(8453)}, &fakeBackend{}, nil, nil)
	res := exec.Execute(context.Background(), sampleIntent())
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "signer")
}
