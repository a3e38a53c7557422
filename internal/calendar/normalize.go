package calendar

import (
	"errors"
	"strings"

	"github.com/username/workday-calendar/pkg/dateutil"
)

// ErrInvalidFormat is returned for dates that are not YYYYMMDD or YYYY-MM-DD
var ErrInvalidFormat = errors.New("invalid date format: use YYYYMMDD or YYYY-MM-DD")

// NormalizeDate strips '-' separators and checks that exactly eight digits
// remain. The check is structural only: "2026-02-30" is accepted.
func NormalizeDate(raw string) (string, error) {
	clean := strings.ReplaceAll(raw, "-", "")
	if !dateutil.IsCompact(clean) {
		return "", ErrInvalidFormat
	}
	return clean, nil
}
