package calendar

import (
	"context"

	"go.uber.org/zap"
)

// CompositeSource implements Source with fallback strategy
// Primary: RemoteSource (HTTP)
// Fallback: FileSource (local files)
type CompositeSource struct {
	primary  Source
	fallback Source
	logger   *zap.Logger
}

// NewCompositeSource creates a new CompositeSource
func NewCompositeSource(primary, fallback Source, logger *zap.Logger) *CompositeSource {
	return &CompositeSource{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Fetch asks the primary source first and the fallback when it comes back empty
func (cs *CompositeSource) Fetch(ctx context.Context, year int) YearDataSet {
	records := cs.primary.Fetch(ctx, year)
	if len(records) > 0 {
		return records
	}

	cs.logger.Warn("Primary calendar source returned no data, falling back",
		zap.Int("year", year))

	return cs.fallback.Fetch(ctx, year)
}
