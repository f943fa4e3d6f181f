package sniper

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/journal"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/token"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/trade"
)

// Chain is the remote surface the runner consumes.
type Chain interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// MetadataResolver supplies token display data and the known-token
// allow-list check.
type MetadataResolver interface {
	Known(addr common.Address) bool
	Resolve(ctx context.Context, addr common.Address) (model.TokenMeta, error)
}

// TradePlanner sizes a swap against a quote.
type TradePlanner interface {
	Plan(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, fee uint32) (model.TradeIntent, error)
}

// TradeExecutor submits a planned swap.
type TradeExecutor interface {
	Execute(ctx context.Context, intent model.TradeIntent) model.TradeResult
}

// RunConfig holds runtime settings for the poll loop.
type RunConfig struct {
	ChainID uint64
	// StartBlock anchors the cursor. Zero means current chain height
	// (no backfill of history).
	StartBlock   uint64
	PollInterval time.Duration
	// ErrorBackoff is the longer pause after a transient fetch failure
	// before the same range is retried.
	ErrorBackoff time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// BatchSize caps how many blocks one iteration processes when the
	// cursor has fallen behind the head.
	BatchSize uint64
	// WETH is the quote-side asset every trade spends.
	WETH     common.Address
	AmountIn *big.Int
	// FeeTiers are probed in order when the candidate carries no fee
	// of its own.
	FeeTiers []uint32
}

// Runner drives the scan-classify-trade pipeline over newly produced
// blocks. It owns the cursor and the seen-store; both live only for
// the process lifetime.
type Runner struct {
	cfg       RunConfig
	chain     Chain
	producers []CandidateProducer
	dec       LogDecoder
	resolver  MetadataResolver
	seen      *SeenStore
	planner   TradePlanner
	executor  TradeExecutor
	sink      journal.Journal
	logger    *zap.Logger

	lastBlock uint64
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(
	cfg RunConfig,
	chainClient Chain,
	producers []CandidateProducer,
	dec LogDecoder,
	resolver MetadataResolver,
	seen *SeenStore,
	planner TradePlanner,
	executor TradeExecutor,
	sink journal.Journal,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = journal.Nop{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 5 * time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	return &Runner{
		cfg:       cfg,
		chain:     chainClient,
		producers: producers,
		dec:       dec,
		resolver:  resolver,
		seen:      seen,
		planner:   planner,
		executor:  executor,
		sink:      sink,
		logger:    logger,
	}
}

// LastBlock returns the cursor position.
func (r *Runner) LastBlock() uint64 {
	return r.lastBlock
}

// Run executes the poll loop until ctx is cancelled. The in-flight
// block always finishes before the loop observes cancellation.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if len(r.producers) == 0 {
		return fmt.Errorf("at least one candidate producer is required")
	}
	if r.cfg.AmountIn == nil || r.cfg.AmountIn.Sign() <= 0 {
		return fmt.Errorf("swap amount must be positive")
	}

	if r.cfg.StartBlock > 0 {
		r.lastBlock = r.cfg.StartBlock - 1
	} else {
		head, err := r.latestWithRetry(ctx)
		if err != nil {
			return fmt.Errorf("anchor cursor: %w", err)
		}
		r.lastBlock = head
		r.logger.Info("cursor anchored at chain head", zap.Uint64("block", head))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.logger.Warn("iteration failed, cursor held",
				zap.Uint64("last_block", r.lastBlock),
				zap.Error(err),
			)
			if err := sleepCtx(ctx, r.cfg.ErrorBackoff); err != nil {
				return err
			}
			continue
		}

		if err := sleepCtx(ctx, r.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// tick processes at most one batch of new blocks. The cursor advances
// per block, only after the block's processing completes; a block is
// never re-entered once advanced past.
func (r *Runner) tick(ctx context.Context) error {
	head, err := r.latestWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("query chain height: %w", err)
	}
	if head <= r.lastBlock {
		return nil
	}

	to := head
	if to-r.lastBlock > r.cfg.BatchSize {
		to = r.lastBlock + r.cfg.BatchSize
	}

	for number := r.lastBlock + 1; number <= to; number++ {
		if err := r.processBlock(ctx, number); err != nil {
			return fmt.Errorf("block %d: %w", number, err)
		}
		r.lastBlock = number
	}
	return nil
}

// processBlock runs every producer over one block and pushes each
// surviving candidate through dedup, classification, resolution,
// planning and execution. Only transient fetch errors propagate;
// everything else is logged per candidate and skipped.
func (r *Runner) processBlock(ctx context.Context, number uint64) error {
	var candidates []Candidate
	for _, producer := range r.producers {
		found, err := producer.Candidates(ctx, number, number)
		if err != nil {
			return fmt.Errorf("%s: %w", producer.Name(), err)
		}
		candidates = append(candidates, found...)
	}
	if len(candidates) == 0 {
		return nil
	}

	r.logger.Info("candidates found",
		zap.Uint64("block", number),
		zap.Int("count", len(candidates)),
	)

	// Sequential gate: dedup and classification decide which
	// candidates are worth remote lookups.
	pending := r.gateCandidates(ctx, candidates)

	// Fan out metadata and quote lookups together, then apply results
	// back sequentially so the seen-store and journal see a single
	// ordered stream.
	var wg sync.WaitGroup
	for i := range pending {
		wg.Add(1)
		go func(p *pendingTrade) {
			defer wg.Done()
			p.prepare(ctx, r)
		}(&pending[i])
	}
	wg.Wait()

	for i := range pending {
		r.finish(ctx, &pending[i])
	}
	return nil
}

type pendingTrade struct {
	cand     Candidate
	newToken common.Address
	feeHint  uint32

	meta    model.TokenMeta
	intent  model.TradeIntent
	skipped string
}

// gateCandidates applies the sequential stages: pool/token dedup,
// transaction classification and known-token exclusion. Launches are
// journaled here whether or not they proceed to a trade.
func (r *Runner) gateCandidates(ctx context.Context, candidates []Candidate) []pendingTrade {
	var out []pendingTrade
	for _, cand := range candidates {
		if cand.Pool != nil {
			if !r.seen.MarkAndCheck(PoolKey(cand.Pool.Pool)) {
				continue
			}
			pending, ok := r.gatePoolCandidate(ctx, cand)
			if !ok {
				continue
			}
			out = append(out, pending)
			continue
		}

		// Heuristic candidate: token only, freshness implied by the
		// strategy's own observation.
		if r.resolver.Known(cand.Token) {
			continue
		}
		if !r.seen.MarkAndCheck(TokenKey(cand.Token)) {
			continue
		}
		out = append(out, pendingTrade{cand: cand, newToken: cand.Token})
	}
	return out
}

func (r *Runner) gatePoolCandidate(ctx context.Context, cand Candidate) (pendingTrade, bool) {
	pool := *cand.Pool

	verdict, err := r.classifyWithReceipt(ctx, pool)
	if err != nil {
		// Unclassifiable pools are conservatively not fresh and never
		// traded.
		r.logger.Warn("classification unavailable, pool skipped",
			zap.String("stage", "classify"),
			zap.String("pool", pool.Pool.Hex()),
			zap.Error(err),
		)
		return pendingTrade{}, false
	}

	newToken, ok := r.pickNewToken(pool, verdict)
	r.journalLaunch(ctx, cand, pool, verdict, newToken)

	if !verdict.FreshLaunch {
		r.logger.Debug("pool is secondary liquidity, not a launch",
			zap.String("pool", pool.Pool.Hex()),
		)
		return pendingTrade{}, false
	}
	if !ok {
		r.logger.Debug("no tradeable side, both tokens known",
			zap.String("pool", pool.Pool.Hex()),
		)
		return pendingTrade{}, false
	}
	if !r.seen.MarkAndCheck(TokenKey(newToken)) {
		return pendingTrade{}, false
	}

	return pendingTrade{cand: cand, newToken: newToken, feeHint: pool.Fee}, true
}

// classifyWithReceipt pulls the originating transaction's logs and
// classifies the pool against them.
func (r *Runner) classifyWithReceipt(ctx context.Context, pool model.PoolCreation) (model.Verdict, error) {
	var receipt *types.Receipt
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		receipt, err = r.chain.TransactionReceipt(ctx, pool.TxHash)
		return err
	})
	if err != nil {
		return model.Verdict{}, err
	}

	txLogs := make([]types.Log, 0, len(receipt.Logs))
	for _, lg := range receipt.Logs {
		txLogs = append(txLogs, *lg)
	}

	return Classify(pool, txLogs, r.dec), nil
}

// pickNewToken selects which side of the pair to acquire: a minted,
// unknown token wins; failing that, the side that is simply unknown.
func (r *Runner) pickNewToken(pool model.PoolCreation, verdict model.Verdict) (common.Address, bool) {
	if verdict.Token0Minted && !r.resolver.Known(pool.Token0) {
		return pool.Token0, true
	}
	if verdict.Token1Minted && !r.resolver.Known(pool.Token1) {
		return pool.Token1, true
	}
	if !r.resolver.Known(pool.Token0) {
		return pool.Token0, true
	}
	if !r.resolver.Known(pool.Token1) {
		return pool.Token1, true
	}
	return common.Address{}, false
}

// prepare resolves metadata and plans the trade. It runs concurrently
// with other candidates of the same block and touches no shared state.
func (p *pendingTrade) prepare(ctx context.Context, r *Runner) {
	meta, err := r.resolver.Resolve(ctx, p.newToken)
	if err != nil {
		p.skipped = fmt.Sprintf("metadata: %v", err)
		return
	}
	p.meta = meta

	feeTiers := r.cfg.FeeTiers
	if p.feeHint != 0 {
		feeTiers = append([]uint32{p.feeHint}, feeTiers...)
	}

	var lastErr error
	for _, fee := range feeTiers {
		intent, err := r.planner.Plan(ctx, r.cfg.WETH, p.newToken, r.cfg.AmountIn, fee)
		if err == nil {
			p.intent = intent
			return
		}
		lastErr = err
		if !errors.Is(err, trade.ErrNoLiquidity) {
			break
		}
	}
	p.skipped = fmt.Sprintf("quote: %v", lastErr)
}

// finish executes prepared trades sequentially and journals results.
func (r *Runner) finish(ctx context.Context, p *pendingTrade) {
	if p.skipped != "" {
		// The pool stays marked processed; a dead quote is not retried
		// every tick.
		r.logger.Info("candidate skipped",
			zap.String("stage", "plan"),
			zap.String("token", p.newToken.Hex()),
			zap.String("source", p.cand.Source),
			zap.String("reason", p.skipped),
		)
		return
	}

	r.logger.Info("executing swap",
		zap.String("token", p.newToken.Hex()),
		zap.String("symbol", p.meta.Symbol),
		zap.String("amount_out_min", p.intent.AmountOutMin.String()),
	)

	result := r.executor.Execute(ctx, p.intent)
	if !result.Success {
		r.logger.Warn("trade failed",
			zap.String("stage", "execute"),
			zap.String("token", p.newToken.Hex()),
			zap.String("reason", result.Reason),
		)
	}

	r.journalTrade(ctx, p, result)
}

func (r *Runner) journalLaunch(ctx context.Context, cand Candidate, pool model.PoolCreation, verdict model.Verdict, newToken common.Address) {
	minted := make([]string, 0, len(verdict.Minted))
	for _, addr := range verdict.MintedList() {
		minted = append(minted, addr.Hex())
	}

	record := model.LaunchRecord{
		ChainID:      r.cfg.ChainID,
		BlockNumber:  pool.BlockNumber,
		TxHash:       pool.TxHash.Hex(),
		Pool:         pool.Pool.Hex(),
		Token0:       pool.Token0.Hex(),
		Token1:       pool.Token1.Hex(),
		Fee:          pool.Fee,
		FreshLaunch:  verdict.FreshLaunch,
		MintedTokens: minted,
		Source:       cand.Source,
		DetectedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if newToken != (common.Address{}) {
		record.NewToken = newToken.Hex()
	}
	if ts, err := r.chain.BlockTimestamp(ctx, pool.BlockNumber); err == nil {
		record.Timestamp = ts
	}

	if err := r.sink.RecordLaunch(ctx, record); err != nil {
		r.logger.Warn("launch journal write failed",
			zap.String("pool", record.Pool),
			zap.Error(err),
		)
	}
}

func (r *Runner) journalTrade(ctx context.Context, p *pendingTrade, result model.TradeResult) {
	record := model.TradeRecord{
		ChainID:      r.cfg.ChainID,
		BlockNumber:  p.cand.BlockNumber,
		TokenIn:      p.intent.TokenIn.Hex(),
		TokenOut:     p.intent.TokenOut.Hex(),
		AmountIn:     p.intent.AmountIn.String(),
		AmountOutMin: p.intent.AmountOutMin.String(),
		Fee:          p.intent.Fee,
		Success:      result.Success,
		Reason:       result.Reason,
		SubmittedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if p.cand.Pool != nil {
		record.Pool = p.cand.Pool.Pool.Hex()
	}
	if result.TxHash != (common.Hash{}) {
		record.TxHash = result.TxHash.Hex()
	}

	if err := r.sink.RecordTrade(ctx, record); err != nil {
		r.logger.Warn("trade journal write failed",
			zap.String("token_out", record.TokenOut),
			zap.Error(err),
		)
	}
}

func (r *Runner) latestWithRetry(ctx context.Context) (uint64, error) {
	var head uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		head, err = r.chain.LatestBlockNumber(ctx)
		return err
	})
	return head, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ MetadataResolver = (*token.Resolver)(nil)
