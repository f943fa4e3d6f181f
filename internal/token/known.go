package token

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// WETHBase is the wrapped native token on Base.
var WETHBase = common.HexToAddress("0x4200000000000000000000000000000000000006")

// DefaultKnownTokens is the Base mainnet allow-list of already
// circulating assets. A token on this list is never treated as new.
func DefaultKnownTokens() map[common.Address]model.TokenMeta {
	known := map[common.Address]model.TokenMeta{
		WETHBase: {Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
		common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"): {Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		common.HexToAddress("0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb"): {Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18},
		common.HexToAddress("0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA"): {Symbol: "USDbC", Name: "USD Base Coin", Decimals: 6},
		common.HexToAddress("0x2Ae3F1Ec7F1F5012CFEab0185bfc7aa3cf0DEc22"): {Symbol: "cbETH", Name: "Coinbase Wrapped Staked ETH", Decimals: 18},
		common.HexToAddress("0x0b3e328455c4059EEb9e3f84b5543F74E24e7E1b"): {Symbol: "cbBTC", Name: "Coinbase Wrapped BTC", Decimals: 8},
		common.HexToAddress("0x940181a94A35A4569E4529A3CDfB74e38FD98631"): {Symbol: "AERO", Name: "Aerodrome", Decimals: 18},
	}
	for addr, meta := range known {
		meta.Address = addr.Hex()
		known[addr] = meta
	}
	return known
}
