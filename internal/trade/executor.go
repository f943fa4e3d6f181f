package trade

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// Backend is the submission surface the executor needs.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ExecutorConfig bounds the executor's gas behavior.
type ExecutorConfig struct {
	Router common.Address
	// WETH marks the wrapped native token. When a swap spends it, the
	// router is paid in native value and wraps on the way in.
	WETH    common.Address
	ChainID *big.Int
	// GasBoostPct multiplies the suggested gas price, in percent
	// (100 = no boost, 400 = 4x).
	GasBoostPct int64
	MaxGasPrice *big.Int
	GasLimit    uint64
	// DryRun plans and logs but never submits.
	DryRun bool
	// ConfirmInterval and ConfirmAttempts pace the detached receipt
	// watcher.
	ConfirmInterval time.Duration
	ConfirmAttempts int
}

// Executor signs and submits planned swaps. A failed submission is
// reported in the result and never halts the calling loop.
type Executor struct {
	cfg     ExecutorConfig
	backend Backend
	signer  Signer
	logger  *zap.Logger
}

func NewExecutor(cfg ExecutorConfig, backend Backend, signer Signer, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GasBoostPct <= 0 {
		cfg.GasBoostPct = 100
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = 500_000
	}
	if cfg.ConfirmInterval <= 0 {
		cfg.ConfirmInterval = 3 * time.Second
	}
	if cfg.ConfirmAttempts <= 0 {
		cfg.ConfirmAttempts = 40
	}
	return &Executor{cfg: cfg, backend: backend, signer: signer, logger: logger}
}

// Execute builds, signs and submits the swap. It returns as soon as
// the transaction is accepted by the node; confirmation is watched by
// a detached poller whose outcome is only logged.
func (e *Executor) Execute(ctx context.Context, intent model.TradeIntent) model.TradeResult {
	if e.cfg.DryRun {
		e.logger.Info("dry run, swap not submitted",
			zap.String("token_in", intent.TokenIn.Hex()),
			zap.String("token_out", intent.TokenOut.Hex()),
			zap.String("amount_in", intent.AmountIn.String()),
			zap.String("amount_out_min", intent.AmountOutMin.String()),
		)
		return model.TradeResult{Success: true, Reason: "dry run"}
	}
	if e.signer == nil {
		return failure("no signer configured")
	}

	signedTx, err := e.buildAndSign(ctx, intent)
	if err != nil {
		return failure(err.Error())
	}

	if err := e.backend.SendTransaction(ctx, signedTx); err != nil {
		return failure(fmt.Sprintf("submit: %v", err))
	}

	txHash := signedTx.Hash()
	e.logger.Info("swap submitted",
		zap.String("tx", txHash.Hex()),
		zap.String("token_out", intent.TokenOut.Hex()),
		zap.String("gas_price", signedTx.GasPrice().String()),
	)

	go e.watchConfirmation(txHash)

	return model.TradeResult{Success: true, TxHash: txHash}
}

func (e *Executor) buildAndSign(ctx context.Context, intent model.TradeIntent) (*types.Transaction, error) {
	routerABI, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}

	// uint24 packs as *big.Int.
	callData, err := routerABI.Pack("exactInputSingle", struct {
		TokenIn           common.Address
		TokenOut          common.Address
		Fee               *big.Int
		Recipient         common.Address
		Deadline          *big.Int
		AmountIn          *big.Int
		AmountOutMinimum  *big.Int
		SqrtPriceLimitX96 *big.Int
	}{
		TokenIn:           intent.TokenIn,
		TokenOut:          intent.TokenOut,
		Fee:               big.NewInt(int64(intent.Fee)),
		Recipient:         e.signer.Address(),
		Deadline:          intent.Deadline,
		AmountIn:          intent.AmountIn,
		AmountOutMinimum:  intent.AmountOutMin,
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("pack swap: %w", err)
	}

	nonce, err := e.backend.PendingNonceAt(ctx, e.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	gasPrice, err := e.boostedGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	// Spending the wrapped native token rides in as transaction value;
	// the router wraps it, so no prior WETH balance or approval is
	// needed.
	value := big.NewInt(0)
	if intent.TokenIn == e.cfg.WETH {
		value = new(big.Int).Set(intent.AmountIn)
	}

	tx := types.NewTransaction(nonce, e.cfg.Router, value, e.cfg.GasLimit, gasPrice, callData)

	signedTx, err := e.signer.SignTx(tx, e.cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return signedTx, nil
}

func (e *Executor) boostedGasPrice(ctx context.Context) (*big.Int, error) {
	suggested, err := e.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	boosted := new(big.Int).Mul(suggested, big.NewInt(e.cfg.GasBoostPct))
	boosted.Div(boosted, big.NewInt(100))
	if e.cfg.MaxGasPrice != nil && e.cfg.MaxGasPrice.Sign() > 0 && boosted.Cmp(e.cfg.MaxGasPrice) > 0 {
		boosted.Set(e.cfg.MaxGasPrice)
	}
	return boosted, nil
}

// watchConfirmation polls the receipt until the transaction is mined
// or the attempt budget runs out. Failures are only logged.
func (e *Executor) watchConfirmation(txHash common.Hash) {
	for attempt := 0; attempt < e.cfg.ConfirmAttempts; attempt++ {
		time.Sleep(e.cfg.ConfirmInterval)

		receipt, err := e.backend.TransactionReceipt(context.Background(), txHash)
		if err != nil {
			continue
		}

		if receipt.Status == types.ReceiptStatusSuccessful {
			e.logger.Info("swap confirmed",
				zap.String("tx", txHash.Hex()),
				zap.Uint64("block", receipt.BlockNumber.Uint64()),
				zap.Uint64("gas_used", receipt.GasUsed),
			)
		} else {
			e.logger.Warn("swap reverted on chain",
				zap.String("tx", txHash.Hex()),
				zap.Uint64("block", receipt.BlockNumber.Uint64()),
			)
		}
		return
	}

	e.logger.Warn("swap confirmation not observed", zap.String("tx", txHash.Hex()))
}

func failure(reason string) model.TradeResult {
	return model.TradeResult{Success: false, Reason: reason}
}
