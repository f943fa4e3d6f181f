package sniper

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// SeenStore records pool and token identities already processed this
// run. Entries are never evicted; duplicate suppression must be
// permanent for the lifetime of the process.
type SeenStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewSeenStore() *SeenStore {
	return &SeenStore{seen: make(map[string]struct{})}
}

// MarkAndCheck returns true only the first time key is seen. The
// check-and-mark is atomic, so no key passes twice even when the
// pool-address and token-address branches race on the same entity.
func (s *SeenStore) MarkAndCheck(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len returns the number of recorded keys.
func (s *SeenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// PoolKey namespaces a pool address.
func PoolKey(addr common.Address) string {
	return "pool:" + addr.Hex()
}

// TokenKey namespaces a token address.
func TokenKey(addr common.Address) string {
	return "token:" + addr.Hex()
}
