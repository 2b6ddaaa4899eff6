package tree

import (
	"context"

	"golang.org/x/sync/errgroup"

	"vtp/internal/config"
	"vtp/internal/discovery"
	"vtp/internal/domain"
	"vtp/internal/logger"
)

// Lister enumerates the tests of a script. It never fails: an unusable
// script yields an empty export.
type Lister interface {
	ListTests(ctx context.Context, script string) domain.ExportData
}

// Builder builds test trees from script exports
type Builder struct {
	config *config.Config
	lister Lister
	log    logger.Logger
}

// NewBuilder creates a new Builder
func NewBuilder(cfg *config.Config, lister Lister, log logger.Logger) *Builder {
	return &Builder{config: cfg, lister: lister, log: log}
}

// Build loads the exports of scripts concurrently and assembles a fresh tree.
// Script roots are ordered naturally by their workspace relative label.
func (b *Builder) Build(ctx context.Context, scripts []string) *Tree {
	exports := make([]domain.ExportData, len(scripts))

	g, gctx := errgroup.WithContext(ctx)
	limit := b.config.LoadConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, script := range scripts {
		i, script := i, script
		g.Go(func() error {
			exports[i] = b.lister.ListTests(gctx, script)
			return nil
		})
	}
	_ = g.Wait()

	t := New()
	locator := discovery.NewLocator()
	for i, script := range scripts {
		t.AddScript(script, b.config.RelativeToWorkspace(script), exports[i], locator.Position)
		b.log.Debugf("loaded %d tests from %s", len(exports[i].Tests), script)
	}
	t.SortRoots()
	return t
}
