package model

// TokenMeta captures ERC20 metadata, cached by address for the process
// lifetime.
type TokenMeta struct {
	Address     string `json:"address"`
	Decimals    uint8  `json:"decimals"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	TotalSupply string `json:"total_supply,omitempty"`
}
