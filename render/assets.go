package render

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"nbreport/report"
	"nbreport/visual"
)

// Resolve produces visual assets of code blocks ahead of rendering. Any
// chart failure aborts, other broken visuals are just left out.
func Resolve(ctx context.Context, blocks []report.Block, r *visual.Resolver, log *zap.Logger) ([]*visual.Asset, error) {
	assets := make([]*visual.Asset, len(blocks))
	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if b.Kind != report.KindCode || len(b.Outputs) == 0 {
			continue
		}
		a, err := r.First(ctx, b.Outputs)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		if a != nil {
			log.Debug("Visual resolved", zap.Int("block", i), zap.Stringer("kind", a.Kind), zap.Int("width", a.Width), zap.Int("height", a.Height))
		}
		assets[i] = a
	}
	return assets, nil
}
