package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Strategy names accepted by the strategies setting.
const (
	StrategyPoolCreation  = "pool-creation"
	StrategyFirstTransfer = "first-transfer"
	StrategyRouterTx      = "router-transaction"
)

// Config holds configuration values loaded from flags, env, or config
// file. The signing key is sourced from the environment only
// (SNIPER_PRIVATE_KEY) and never from a flag.
type Config struct {
	RPCURL       string
	StartBlock   uint64
	PollInterval time.Duration
	ErrorBackoff time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	BatchSize    uint64

	Factories   []string
	Strategies  []string
	KnownTokens []string

	Router      string
	Quoter      string
	WETH        string
	AmountIn    string
	SlippageBps uint32
	FeeTiers    []uint32
	DeadlineWin time.Duration

	GasBoostPct     int64
	MaxGasPriceGwei int64
	GasLimit        uint64

	PrivateKey string
	DryRun     bool

	Out      string
	PGDSN    string
	LogLevel string
}

// Load merges config file, environment variables, and flags into
// Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SNIPER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("poll-interval", time.Second)
	v.SetDefault("error-backoff", 5*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("batch-size", uint64(10))
	v.SetDefault("strategy", []string{StrategyPoolCreation})
	v.SetDefault("router", "0x2626664c2603336E57B271c5C0b26F421741e481")
	v.SetDefault("quoter", "0x3d4e44Eb1374240CE5F1B871ab261CD16335B76a")
	v.SetDefault("weth", "0x4200000000000000000000000000000000000006")
	v.SetDefault("amount-in", "100000000000000")
	v.SetDefault("slippage-bps", 500)
	v.SetDefault("fee-tiers", []string{"500", "3000", "10000"})
	v.SetDefault("deadline", 5*time.Minute)
	v.SetDefault("gas-boost-pct", 400)
	v.SetDefault("max-gas-price-gwei", 50)
	v.SetDefault("gas-limit", uint64(500_000))
	v.SetDefault("out", "./data/launches.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	feeTiers, err := parseFeeTiers(getStringSlice(v, "fee-tiers"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		StartBlock:      v.GetUint64("from"),
		PollInterval:    v.GetDuration("poll-interval"),
		ErrorBackoff:    v.GetDuration("error-backoff"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		BatchSize:       v.GetUint64("batch-size"),
		Factories:       getStringSlice(v, "factory"),
		Strategies:      getStringSlice(v, "strategy"),
		KnownTokens:     getStringSlice(v, "known-token"),
		Router:          v.GetString("router"),
		Quoter:          v.GetString("quoter"),
		WETH:            v.GetString("weth"),
		AmountIn:        v.GetString("amount-in"),
		SlippageBps:     v.GetUint32("slippage-bps"),
		FeeTiers:        feeTiers,
		DeadlineWin:     v.GetDuration("deadline"),
		GasBoostPct:     v.GetInt64("gas-boost-pct"),
		MaxGasPriceGwei: v.GetInt64("max-gas-price-gwei"),
		GasLimit:        v.GetUint64("gas-limit"),
		PrivateKey:      v.GetString("private-key"),
		DryRun:          v.GetBool("dry-run"),
		Out:             v.GetString("out"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate rejects configurations the process must not start with.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !c.DryRun && c.PrivateKey == "" {
		return fmt.Errorf("signing key is required outside dry-run (set SNIPER_PRIVATE_KEY)")
	}
	if c.SlippageBps >= 10_000 {
		return fmt.Errorf("slippage-bps must be below 10000")
	}
	if _, ok := new(big.Int).SetString(c.AmountIn, 10); !ok {
		return fmt.Errorf("amount-in is not a decimal integer: %q", c.AmountIn)
	}
	for _, addr := range []struct{ name, value string }{
		{"router", c.Router},
		{"quoter", c.Quoter},
		{"weth", c.WETH},
	} {
		if !common.IsHexAddress(addr.value) {
			return fmt.Errorf("%s is not a hex address: %q", addr.name, addr.value)
		}
	}
	for _, addr := range c.KnownTokens {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("known-token is not a hex address: %q", addr)
		}
	}
	for _, addr := range c.Factories {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("factory is not a hex address: %q", addr)
		}
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for _, strategy := range c.Strategies {
		switch strategy {
		case StrategyPoolCreation, StrategyFirstTransfer, StrategyRouterTx:
		default:
			return fmt.Errorf("unknown strategy %q", strategy)
		}
	}
	if len(c.FeeTiers) == 0 {
		return fmt.Errorf("at least one fee tier is required")
	}
	return nil
}

// AmountInWei returns the parsed swap input amount.
func (c Config) AmountInWei() *big.Int {
	amount, _ := new(big.Int).SetString(c.AmountIn, 10)
	return amount
}

func parseFeeTiers(inputs []string) ([]uint32, error) {
	out := make([]uint32, 0, len(inputs))
	for _, input := range inputs {
		var tier uint32
		if _, err := fmt.Sscanf(input, "%d", &tier); err != nil {
			return nil, fmt.Errorf("invalid fee tier: %q", input)
		}
		out = append(out, tier)
	}
	return out, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
