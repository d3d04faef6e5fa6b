package engine

import (
	"context"
	"log/slog"

	"github.com/arbiter-social/arbiter/moderation/analyzer"
	"github.com/arbiter-social/arbiter/moderation/countstore"
	"github.com/arbiter-social/arbiter/moderation/filter"
	"github.com/arbiter-social/arbiter/moderation/modstore"
	"github.com/arbiter-social/arbiter/moderation/setstore"
)

// EngineTestFixture builds a fully in-memory engine with default wordlists
// and pattern tables. Intentionally exported, for use in other packages.
func EngineTestFixture() *Engine {
	ctx := context.Background()
	sets := setstore.NewDefaultSetStore()
	anlz, err := analyzer.New(ctx, sets)
	if err != nil {
		panic(err)
	}
	wf, err := filter.NewWordFilter(ctx, sets)
	if err != nil {
		panic(err)
	}
	return NewEngine(EngineConfig{
		Logger:   slog.Default(),
		Analyzer: anlz,
		Filter:   wf,
		Store:    modstore.NewMemStore(),
		Counters: countstore.NewMemCountStore(),
	})
}
