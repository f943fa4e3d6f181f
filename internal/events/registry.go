package events

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Kind classifies what a registered signature decodes into.
type Kind int

const (
	KindPoolCreation Kind = iota
	KindTransfer
)

// Known topic0 signatures.
var (
	// PairCreated(address indexed token0, address indexed token1, address pair, uint256)
	TopicPairCreatedV2 = common.HexToHash("0x0d3648bd0f6ba80134a33ba9275ac585d9d315f0ad8355cddefde31afa28d0e9")
	// PoolCreated(address indexed token0, address indexed token1, uint24 indexed fee, int24 tickSpacing, address pool)
	TopicPoolCreatedV3 = common.HexToHash("0x783cca1c0412dd0d695e784568c96da2e9c22ff989357a2e8b1d9b2b4e6b7118")
	// Transfer(address indexed from, address indexed to, uint256 value)
	TopicTransfer = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
)

// Layout describes where a signature's fields live in the raw log.
// Different deployed factories position the fee and pool address
// differently, so each signature carries its own descriptor instead of
// one hardcoded offset.
type Layout struct {
	// TopicCount is the required number of topics including topic0.
	TopicCount int
	// MinDataWords is the required number of 32-byte data words.
	MinDataWords int
	// FeeTopicIndex is the topic carrying the fee tier, or -1 when the
	// signature has no fee field.
	FeeTopicIndex int
	// DefaultFee is used when FeeTopicIndex is -1.
	DefaultFee uint32
	// PoolDataWord is the data word carrying the pool address.
	PoolDataWord int
}

// Signature binds a topic0 to its kind and layout.
type Signature struct {
	Name   string
	Topic0 common.Hash
	Kind   Kind
	Layout Layout
}

// Registry is the static mapping of known event signatures, looked up
// by exact topic0 match. Registration order is preserved so scan
// results can be processed deterministically.
type Registry struct {
	ordered []Signature
	byTopic map[common.Hash]Signature
}

// NewRegistry returns a registry preloaded with the supported pool
// factory and transfer signatures.
func NewRegistry() *Registry {
	r := &Registry{byTopic: make(map[common.Hash]Signature)}
	r.mustRegister(Signature{
		Name:   "PairCreated",
		Topic0: TopicPairCreatedV2,
		Kind:   KindPoolCreation,
		Layout: Layout{
			TopicCount:    3,
			MinDataWords:  1,
			FeeTopicIndex: -1,
			DefaultFee:    3000,
			PoolDataWord:  0,
		},
	})
	r.mustRegister(Signature{
		Name:   "PoolCreated",
		Topic0: TopicPoolCreatedV3,
		Kind:   KindPoolCreation,
		Layout: Layout{
			TopicCount:    4,
			MinDataWords:  2,
			FeeTopicIndex: 3,
			PoolDataWord:  1,
		},
	})
	r.mustRegister(Signature{
		Name:   "Transfer",
		Topic0: TopicTransfer,
		Kind:   KindTransfer,
		Layout: Layout{
			TopicCount:    3,
			MinDataWords:  1,
			FeeTopicIndex: -1,
		},
	})
	return r
}

// Register adds a signature. Duplicate topic0 registrations are
// rejected.
func (r *Registry) Register(sig Signature) error {
	if sig.Topic0 == (common.Hash{}) {
		return fmt.Errorf("empty topic0 for %q", sig.Name)
	}
	if _, ok := r.byTopic[sig.Topic0]; ok {
		return fmt.Errorf("duplicate signature %s", sig.Topic0.Hex())
	}
	r.byTopic[sig.Topic0] = sig
	r.ordered = append(r.ordered, sig)
	return nil
}

func (r *Registry) mustRegister(sig Signature) {
	if err := r.Register(sig); err != nil {
		panic(err)
	}
}

// Lookup returns the signature registered for topic0.
func (r *Registry) Lookup(topic0 common.Hash) (Signature, bool) {
	sig, ok := r.byTopic[topic0]
	return sig, ok
}

// PoolCreationSignatures returns the pool-creation signatures in
// registration order.
func (r *Registry) PoolCreationSignatures() []Signature {
	out := make([]Signature, 0, len(r.ordered))
	for _, sig := range r.ordered {
		if sig.Kind == KindPoolCreation {
			out = append(out, sig)
		}
	}
	return out
}

// TransferSignature returns the registered transfer signature.
func (r *Registry) TransferSignature() (Signature, bool) {
	for _, sig := range r.ordered {
		if sig.Kind == KindTransfer {
			return sig, true
		}
	}
	return Signature{}, false
}
