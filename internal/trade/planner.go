package trade

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// ErrNoLiquidity marks a quote against a pool with no usable liquidity.
var ErrNoLiquidity = errors.New("no usable liquidity")

const bpsDenominator = 10_000

// ContractCaller is the read-only call surface the planner needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// PlannerConfig sizes trades and bounds slippage.
type PlannerConfig struct {
	Quoter common.Address
	// SlippageBps is the accepted shortfall below the quoted output,
	// in basis points.
	SlippageBps uint32
	// DeadlineWindow bounds how long a planned swap stays valid.
	DeadlineWindow time.Duration
}

// Planner requests off-chain quotes and sizes swap intents. It never
// mutates chain state.
type Planner struct {
	cfg    PlannerConfig
	caller ContractCaller
	now    func() time.Time
}

func NewPlanner(cfg PlannerConfig, caller ContractCaller) *Planner {
	if cfg.DeadlineWindow <= 0 {
		cfg.DeadlineWindow = 5 * time.Minute
	}
	return &Planner{cfg: cfg, caller: caller, now: time.Now}
}

// Plan quotes amountIn of tokenIn against tokenOut at the given fee
// tier and, if the quote is usable, returns a swap intent with the
// slippage-adjusted minimum output and a deadline.
func (p *Planner) Plan(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, fee uint32) (model.TradeIntent, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return model.TradeIntent{}, fmt.Errorf("amount in must be positive")
	}
	if p.cfg.SlippageBps >= bpsDenominator {
		return model.TradeIntent{}, fmt.Errorf("slippage %d bps leaves no acceptable output", p.cfg.SlippageBps)
	}

	amountOut, err := p.Quote(ctx, tokenIn, tokenOut, amountIn, fee)
	if err != nil {
		return model.TradeIntent{}, err
	}

	return model.TradeIntent{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		AmountIn:     new(big.Int).Set(amountIn),
		AmountOutMin: applySlippage(amountOut, p.cfg.SlippageBps),
		Fee:          fee,
		Deadline:     big.NewInt(p.now().Add(p.cfg.DeadlineWindow).Unix()),
	}, nil
}

// Quote returns the quoted output amount for a single-hop swap.
func (p *Planner) Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, fee uint32) (*big.Int, error) {
	quoterABI, err := QuoterV2ABI()
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}

	// uint24 packs as *big.Int.
	callData, err := quoterABI.Pack("quoteExactInputSingle", struct {
		TokenIn           common.Address
		TokenOut          common.Address
		AmountIn          *big.Int
		Fee               *big.Int
		SqrtPriceLimitX96 *big.Int
	}{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(fee)),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("pack quote: %w", err)
	}

	msg := ethereum.CallMsg{To: &p.cfg.Quoter, Data: callData}
	resp, err := p.caller.CallContract(ctx, msg, nil)
	if err != nil {
		// The quoter reverts when the pool does not exist or holds no
		// liquidity; that is a skip, not a transport failure.
		if isRevert(err) {
			return nil, fmt.Errorf("%w: %s/%s fee %d", ErrNoLiquidity, tokenIn.Hex(), tokenOut.Hex(), fee)
		}
		return nil, fmt.Errorf("quote call: %w", err)
	}
	if len(resp) < 32 {
		return nil, fmt.Errorf("%w: empty quote result", ErrNoLiquidity)
	}

	amountOut := new(big.Int).SetBytes(resp[:32])
	if amountOut.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero output quoted", ErrNoLiquidity)
	}
	return amountOut, nil
}

// applySlippage returns quoted * (1 - bps/10000), rounded down.
func applySlippage(quoted *big.Int, bps uint32) *big.Int {
	keep := big.NewInt(int64(bpsDenominator - bps))
	out := new(big.Int).Mul(quoted, keep)
	return out.Div(out, big.NewInt(bpsDenominator))
}

func isRevert(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert")
}
