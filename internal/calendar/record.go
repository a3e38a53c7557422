package calendar

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/username/workday-calendar/pkg/dateutil"
)

// wireRecord is the upstream JSON shape of a day
type wireRecord struct {
	Date        string `json:"date"`
	IsHoliday   bool   `json:"isHoliday"`
	Description string `json:"description"`
	Week        string `json:"week"`
}

// UnmarshalJSON decodes the upstream shape and keeps the original bytes.
// Missing keys take their zero values.
func (r *DailyRecord) UnmarshalJSON(data []byte) error {
	var wire wireRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = DailyRecord{
		Date:        wire.Date,
		IsHoliday:   wire.IsHoliday,
		Description: wire.Description,
		Week:        wire.Week,
		Raw:         append(json.RawMessage(nil), data...),
	}
	return nil
}

// MarshalJSON writes the record back in the upstream shape, unknown fields included
func (r DailyRecord) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(wireRecord{
		Date:        r.Date,
		IsHoliday:   r.IsHoliday,
		Description: r.Description,
		Week:        r.Week,
	})
}

// decodeYear parses a JSON array of day records for year. Records that fail
// to decode, carry a malformed date, belong to another year or repeat a date
// are dropped and logged. The result is sorted by date.
func decodeYear(data []byte, year int, logger *zap.Logger) (YearDataSet, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse calendar JSON: %w", err)
	}

	prefix := fmt.Sprintf("%04d", year)
	seen := make(map[string]struct{}, len(items))
	records := make(YearDataSet, 0, len(items))

	for i, item := range items {
		var record DailyRecord
		if err := json.Unmarshal(item, &record); err != nil {
			logger.Warn("Skipping undecodable calendar record",
				zap.Int("year", year),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}

		if !validRecordDate(record.Date) {
			logger.Warn("Skipping calendar record with malformed date",
				zap.Int("year", year),
				zap.Int("index", i),
				zap.String("date", record.Date))
			continue
		}

		if record.Date[:4] != prefix {
			logger.Warn("Skipping calendar record from another year",
				zap.Int("year", year),
				zap.String("date", record.Date))
			continue
		}

		if _, dup := seen[record.Date]; dup {
			logger.Warn("Skipping duplicate calendar record",
				zap.String("date", record.Date))
			continue
		}
		seen[record.Date] = struct{}{}

		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})

	return records, nil
}

// validRecordDate accepts only real calendar dates in YYYYMMDD form
func validRecordDate(date string) bool {
	if !dateutil.IsCompact(date) {
		return false
	}
	_, err := dateutil.ParseCompact(date, time.UTC)
	return err == nil
}
