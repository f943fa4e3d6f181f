package sniper

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/events"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// Candidate is a prospective new-token opportunity surfaced by one of
// the detection strategies. Pool is set when the strategy observed the
// pool-creation event itself; heuristic strategies that only see
// token activity leave it nil and set Token directly.
type Candidate struct {
	Source      string
	Pool        *model.PoolCreation
	Token       common.Address
	BlockNumber uint64
	TxHash      common.Hash
}

// CandidateProducer is one detection strategy. All strategies feed the
// same classifier and executor stages.
type CandidateProducer interface {
	Name() string
	// Candidates surfaces opportunities found in the inclusive block
	// range. A transient fetch failure is returned as an error so the
	// caller can retry the range without advancing.
	Candidates(ctx context.Context, fromBlock, toBlock uint64) ([]Candidate, error)
}

// PoolCreationProducer matches pool-creation event signatures. This is
// the primary strategy.
type PoolCreationProducer struct {
	scanner *Scanner
	dec     *events.Decoder
}

func NewPoolCreationProducer(scanner *Scanner, dec *events.Decoder) *PoolCreationProducer {
	return &PoolCreationProducer{scanner: scanner, dec: dec}
}

func (p *PoolCreationProducer) Name() string { return "pool-creation" }

func (p *PoolCreationProducer) Candidates(ctx context.Context, fromBlock, toBlock uint64) ([]Candidate, error) {
	logs, err := p.scanner.Scan(ctx, fromBlock, toBlock, p.dec.Registry().PoolCreationSignatures())
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, lg := range logs {
		rec, ok := p.dec.DecodePoolCreation(lg)
		if !ok {
			continue
		}
		pool := rec
		out = append(out, Candidate{
			Source:      p.Name(),
			Pool:        &pool,
			BlockNumber: pool.BlockNumber,
			TxHash:      pool.TxHash,
		})
	}
	return out, nil
}

// FirstTransferProducer surfaces tokens whose first observed activity
// is a mint transfer. It catches launches whose pool factory is not in
// the signature registry.
type FirstTransferProducer struct {
	scanner *Scanner
	dec     *events.Decoder
}

func NewFirstTransferProducer(scanner *Scanner, dec *events.Decoder) *FirstTransferProducer {
	return &FirstTransferProducer{scanner: scanner, dec: dec}
}

func (p *FirstTransferProducer) Name() string { return "first-transfer" }

func (p *FirstTransferProducer) Candidates(ctx context.Context, fromBlock, toBlock uint64) ([]Candidate, error) {
	transferSig, ok := p.dec.Registry().TransferSignature()
	if !ok {
		return nil, nil
	}
	logs, err := p.scanner.Scan(ctx, fromBlock, toBlock, []events.Signature{transferSig})
	if err != nil {
		return nil, err
	}

	var out []Candidate
	perTx := make(map[string]struct{})
	for _, lg := range logs {
		transfer, ok := p.dec.DecodeTransfer(lg)
		if !ok || !transfer.IsMint() {
			continue
		}
		// One candidate per minted token per transaction.
		key := lg.TxHash.Hex() + ":" + transfer.Token.Hex()
		if _, dup := perTx[key]; dup {
			continue
		}
		perTx[key] = struct{}{}
		out = append(out, Candidate{
			Source:      p.Name(),
			Token:       transfer.Token,
			BlockNumber: lg.BlockNumber,
			TxHash:      lg.TxHash,
		})
	}
	return out, nil
}

// BlockSource fetches blocks with full transactions.
type BlockSource interface {
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
}

// ReceiptSource fetches transaction receipts.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// RouterTransactionProducer inspects transactions sent to the swap
// router and surfaces the tokens their receipts moved. It catches
// launch-and-buy bundles that route through the router in the creation
// transaction itself.
type RouterTransactionProducer struct {
	blocks   BlockSource
	receipts ReceiptSource
	dec      *events.Decoder
	router   common.Address
}

func NewRouterTransactionProducer(blocks BlockSource, receipts ReceiptSource, dec *events.Decoder, router common.Address) *RouterTransactionProducer {
	return &RouterTransactionProducer{blocks: blocks, receipts: receipts, dec: dec, router: router}
}

func (p *RouterTransactionProducer) Name() string { return "router-transaction" }

func (p *RouterTransactionProducer) Candidates(ctx context.Context, fromBlock, toBlock uint64) ([]Candidate, error) {
	var out []Candidate
	for number := fromBlock; number <= toBlock; number++ {
		block, err := p.blocks.BlockByNumber(ctx, new(big.Int).SetUint64(number))
		if err != nil {
			return nil, fmt.Errorf("fetch block %d: %w", number, err)
		}

		for _, tx := range block.Transactions() {
			if tx.To() == nil || *tx.To() != p.router {
				continue
			}
			receipt, err := p.receipts.TransactionReceipt(ctx, tx.Hash())
			if err != nil {
				return nil, fmt.Errorf("fetch receipt %s: %w", tx.Hash().Hex(), err)
			}
			seenInTx := make(map[common.Address]struct{})
			for _, lg := range receipt.Logs {
				transfer, ok := p.dec.DecodeTransfer(*lg)
				if !ok {
					continue
				}
				if _, dup := seenInTx[transfer.Token]; dup {
					continue
				}
				seenInTx[transfer.Token] = struct{}{}
				out = append(out, Candidate{
					Source:      p.Name(),
					Token:       transfer.Token,
					BlockNumber: number,
					TxHash:      tx.Hash(),
				})
			}
		}
	}
	return out, nil
}
