package model

// LaunchRecord is the journal entry for one classified pool creation.
type LaunchRecord struct {
	ChainID      uint64   `json:"chain_id"`
	BlockNumber  uint64   `json:"block_number"`
	TxHash       string   `json:"tx_hash"`
	Pool         string   `json:"pool"`
	Token0       string   `json:"token0"`
	Token1       string   `json:"token1"`
	Fee          uint32   `json:"fee"`
	FreshLaunch  bool     `json:"fresh_launch"`
	MintedTokens []string `json:"minted_tokens,omitempty"`
	NewToken     string   `json:"new_token,omitempty"`
	Symbol       string   `json:"symbol,omitempty"`
	Name         string   `json:"name,omitempty"`
	Source       string   `json:"source"`
	Timestamp    uint64   `json:"timestamp,omitempty"`
	DetectedAt   string   `json:"detected_at"`
}

// TradeRecord is the journal entry for one trade attempt.
type TradeRecord struct {
	ChainID      uint64 `json:"chain_id"`
	BlockNumber  uint64 `json:"block_number"`
	Pool         string `json:"pool,omitempty"`
	TokenIn      string `json:"token_in"`
	TokenOut     string `json:"token_out"`
	AmountIn     string `json:"amount_in"`
	AmountOutMin string `json:"amount_out_min"`
	Fee          uint32 `json:"fee"`
	Success      bool   `json:"success"`
	TxHash       string `json:"tx_hash,omitempty"`
	Reason       string `json:"reason,omitempty"`
	SubmittedAt  string `json:"submitted_at"`
}
