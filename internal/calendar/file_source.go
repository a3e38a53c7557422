package calendar

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/workday-calendar/internal/metrics"
)

const fileSourceName = "file"

// FileSource implements Source using local JSON files, one per year, in the
// same shape the remote source serves. The path template carries a {year}
// placeholder, e.g. "data/{year}.json".
type FileSource struct {
	pathTemplate string
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewFileSource creates a new FileSource instance
func NewFileSource(pathTemplate string, m *metrics.Metrics, logger *zap.Logger) *FileSource {
	return &FileSource{
		pathTemplate: pathTemplate,
		metrics:      m,
		logger:       logger,
	}
}

// Fetch loads the file for year. Missing or malformed files yield an empty set.
func (s *FileSource) Fetch(ctx context.Context, year int) YearDataSet {
	start := time.Now()
	path := strings.ReplaceAll(s.pathTemplate, yearPlaceholder, strconv.Itoa(year))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Calendar file not found",
				zap.String("file", path),
				zap.Int("year", year))
			s.metrics.ObserveFetch(fileSourceName, metrics.OutcomeEmpty, time.Since(start))
			return nil
		}
		s.logger.Error("Failed to open calendar file",
			zap.String("file", path),
			zap.Error(err))
		s.metrics.ObserveFetch(fileSourceName, metrics.OutcomeError, time.Since(start))
		return nil
	}

	records, err := decodeYear(data, year, s.logger)
	if err != nil {
		s.logger.Error("Failed to parse calendar file",
			zap.String("file", path),
			zap.Error(err))
		s.metrics.ObserveFetch(fileSourceName, metrics.OutcomeError, time.Since(start))
		return nil
	}

	if len(records) == 0 {
		s.metrics.ObserveFetch(fileSourceName, metrics.OutcomeEmpty, time.Since(start))
		return nil
	}

	s.logger.Info("Calendar file loaded",
		zap.String("file", path),
		zap.Int("records", len(records)))
	s.metrics.ObserveFetch(fileSourceName, metrics.OutcomeOK, time.Since(start))

	return records
}
