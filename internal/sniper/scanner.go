package sniper

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/events"
)

// LogSource is the log fetch surface the scanner needs.
type LogSource interface {
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// Scanner retrieves event logs matching registered signatures. It
// issues one fetch per signature, since multi-signature OR filters are
// not served reliably by every node, and preserves the node's returned
// order within each signature's results.
type Scanner struct {
	source LogSource
	// addresses optionally restricts scans to specific emitters
	// (factory contracts). Empty means no address filter.
	addresses []common.Address
}

func NewScanner(source LogSource, addresses []common.Address) *Scanner {
	return &Scanner{source: source, addresses: addresses}
}

// Scan fetches logs for each signature over the inclusive block range,
// concatenated in signature order. An empty result is not an error.
func (s *Scanner) Scan(ctx context.Context, fromBlock, toBlock uint64, sigs []events.Signature) ([]types.Log, error) {
	if toBlock < fromBlock {
		return nil, fmt.Errorf("to block %d precedes from block %d", toBlock, fromBlock)
	}

	var out []types.Log
	for _, sig := range sigs {
		logs, err := s.source.FilterLogs(ctx, fromBlock, toBlock, s.addresses, []common.Hash{sig.Topic0})
		if err != nil {
			return nil, fmt.Errorf("fetch %s logs [%d,%d]: %w", sig.Name, fromBlock, toBlock, err)
		}
		out = append(out, logs...)
	}
	return out, nil
}
