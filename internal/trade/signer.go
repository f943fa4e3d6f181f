package trade

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is the wallet capability injected at startup. Key material is
// sourced from the environment, never embedded in code.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

type ecdsaSigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewKeySigner builds a signer from a hex-encoded secp256k1 key.
func NewKeySigner(hexKey string) (Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("signing key is empty")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	return &ecdsaSigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *ecdsaSigner) Address() common.Address {
	return s.addr
}

func (s *ecdsaSigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}
