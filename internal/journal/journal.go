package journal

import (
	"context"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// Journal is a sink for detected launches and trade attempts.
type Journal interface {
	RecordLaunch(ctx context.Context, launch model.LaunchRecord) error
	RecordTrade(ctx context.Context, trade model.TradeRecord) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordLaunch(context.Context, model.LaunchRecord) error { return nil }
func (Nop) RecordTrade(context.Context, model.TradeRecord) error   { return nil }

type multi struct {
	sinks []Journal
}

// Multi fans records out to every sink, returning the first error.
func Multi(sinks ...Journal) Journal {
	return &multi{sinks: sinks}
}

func (m *multi) RecordLaunch(ctx context.Context, launch model.LaunchRecord) error {
	for _, sink := range m.sinks {
		if err := sink.RecordLaunch(ctx, launch); err != nil {
			return err
		}
	}
	return nil
}

func (m *multi) RecordTrade(ctx context.Context, trade model.TradeRecord) error {
	for _, sink := range m.sinks {
		if err := sink.RecordTrade(ctx, trade); err != nil {
			return err
		}
	}
	return nil
}
