package token

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// ErrNotToken marks an address that does not answer ERC20 metadata
// calls, e.g. a pool contract or a plain wallet.
var ErrNotToken = errors.New("address is not an ERC20 token")

// ContractCaller is the read-only call surface the resolver needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type cacheEntry struct {
	meta model.TokenMeta
	err  error
}

// Resolver probes token addresses for ERC20 metadata. Results (both
// successes and failures) are cached by address for the process
// lifetime. Addresses in the known set resolve without a remote call
// and are excluded from new-token consideration.
type Resolver struct {
	caller ContractCaller
	known  map[common.Address]model.TokenMeta
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[common.Address]cacheEntry
}

func NewResolver(caller ContractCaller, known map[common.Address]model.TokenMeta, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if known == nil {
		known = make(map[common.Address]model.TokenMeta)
	}
	return &Resolver{
		caller: caller,
		known:  known,
		logger: logger,
		cache:  make(map[common.Address]cacheEntry),
	}
}

// Known reports whether the address is on the preconfigured allow-list
// of already circulating tokens.
func (r *Resolver) Known(addr common.Address) bool {
	_, ok := r.known[addr]
	return ok
}

// Resolve returns metadata for addr. A previous failure for the same
// address is returned from cache without a retry.
func (r *Resolver) Resolve(ctx context.Context, addr common.Address) (model.TokenMeta, error) {
	if meta, ok := r.known[addr]; ok {
		return meta, nil
	}

	r.mu.RLock()
	entry, cached := r.cache[addr]
	r.mu.RUnlock()
	if cached {
		return entry.meta, entry.err
	}

	meta, err := r.fetch(ctx, addr)
	if err != nil {
		r.logger.Debug("token metadata fetch failed",
			zap.String("token", addr.Hex()),
			zap.Error(err),
		)
	}

	r.mu.Lock()
	r.cache[addr] = cacheEntry{meta: meta, err: err}
	r.mu.Unlock()

	return meta, err
}

func (r *Resolver) fetch(ctx context.Context, addr common.Address) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: addr.Hex()}
	if r.caller == nil {
		return meta, fmt.Errorf("contract caller is nil")
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	symbol, err := r.callString(ctx, addr, "symbol", stringABI, bytes32ABI)
	if err != nil {
		return meta, fmt.Errorf("%w: %s", ErrNotToken, addr.Hex())
	}
	if symbol == "" {
		return meta, fmt.Errorf("%w: empty symbol at %s", ErrNotToken, addr.Hex())
	}
	meta.Symbol = symbol

	name, err := r.callString(ctx, addr, "name", stringABI, bytes32ABI)
	if err != nil || name == "" {
		return meta, fmt.Errorf("%w: unreadable name at %s", ErrNotToken, addr.Hex())
	}
	meta.Name = name

	values, err := r.call(ctx, addr, "decimals", stringABI)
	if err != nil {
		return meta, fmt.Errorf("decimals: %w", err)
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, fmt.Errorf("decimals: %w", err)
	}
	meta.Decimals = decimals

	if values, err := r.call(ctx, addr, "totalSupply", stringABI); err == nil {
		if supply, ok := values[0].(*big.Int); ok {
			meta.TotalSupply = supply.String()
		}
	}

	return meta, nil
}

// callString resolves a string-returning ERC20 method, tolerating both
// ABI-encoded dynamic strings and raw fixed-length byte strings.
func (r *Resolver) callString(ctx context.Context, addr common.Address, method string, stringABI, bytes32ABI abi.ABI) (string, error) {
	if values, err := r.call(ctx, addr, method, stringABI); err == nil {
		if s, ok := values[0].(string); ok {
			return s, nil
		}
	}
	values, err := r.call(ctx, addr, method, bytes32ABI)
	if err != nil {
		return "", err
	}
	s, ok := bytes32ToString(values[0])
	if !ok || !utf8.ValidString(s) {
		return "", fmt.Errorf("undecodable %s payload", method)
	}
	return s, nil
}

func (r *Resolver) call(ctx context.Context, addr common.Address, method string, parsed abi.ABI) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &addr, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
