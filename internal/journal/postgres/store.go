package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// Store persists launch and trade records to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// RecordLaunch inserts a classified pool creation. Replays of the same
// log are ignored.
func (s *Store) RecordLaunch(ctx context.Context, launch model.LaunchRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO launches (
			chain_id, block_number, tx_hash, pool, token0, token1, fee,
			fresh_launch, minted_tokens, new_token, symbol, name, source, block_ts, detected_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (chain_id, pool) DO NOTHING
	`,
		int64(launch.ChainID),
		int64(launch.BlockNumber),
		launch.TxHash,
		launch.Pool,
		launch.Token0,
		launch.Token1,
		launch.Fee,
		launch.FreshLaunch,
		launch.MintedTokens,
		launch.NewToken,
		launch.Symbol,
		launch.Name,
		launch.Source,
		int64(launch.Timestamp),
		launch.DetectedAt,
	)
	return err
}

// RecordTrade inserts one trade attempt.
func (s *Store) RecordTrade(ctx context.Context, trade model.TradeRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trades (
			chain_id, block_number, pool, token_in, token_out, amount_in,
			amount_out_min, fee, success, tx_hash, reason, submitted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		int64(trade.ChainID),
		int64(trade.BlockNumber),
		trade.Pool,
		trade.TokenIn,
		trade.TokenOut,
		trade.AmountIn,
		trade.AmountOutMin,
		trade.Fee,
		trade.Success,
		trade.TxHash,
		trade.Reason,
		trade.SubmittedAt,
	)
	return err
}
