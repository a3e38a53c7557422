package calendar

import (
	"context"
	"encoding/json"
)

// Result messages shared by every adapter.
const (
	MessageNoData        = "No specific data found (might be regular day)"
	MessageInvalidFormat = "Invalid date format. Use YYYYMMDD or YYYY-MM-DD"
	ReasonRegularDay     = "Regular Day"
)

// DefaultUpcomingLimit is used when a caller does not ask for a specific count
const DefaultUpcomingLimit = 5

// DailyRecord is one day's official status as published by the data source.
// IsHoliday is true for public holidays and for swapped-in days off, false for
// ordinary days and for makeup workdays.
type DailyRecord struct {
	Date        string // YYYYMMDD
	IsHoliday   bool
	Description string
	Week        string // advisory weekday label

	// Raw holds the record exactly as delivered upstream
	Raw json.RawMessage
}

// YearDataSet is the date-ordered sequence of records for one calendar year.
// An empty set means the data is unavailable, not that the year has no holidays.
type YearDataSet []DailyRecord

// Source retrieves a year's records. Implementations never fail: any problem is
// logged and reported as an empty set.
type Source interface {
	Fetch(ctx context.Context, year int) YearDataSet
}

// SourceFunc adapts a plain function to the Source interface
type SourceFunc func(ctx context.Context, year int) YearDataSet

// Fetch calls f(ctx, year)
func (f SourceFunc) Fetch(ctx context.Context, year int) YearDataSet {
	return f(ctx, year)
}

// Status tells which shape a resolution result has
type Status string

const (
	StatusFound        Status = "found"
	StatusNoData       Status = "no_data"
	StatusInvalidInput Status = "invalid_input"
)

// DateInfo answers "what is this date?"
type DateInfo struct {
	Status      Status
	Date        string
	IsHoliday   bool
	Description string
	Week        string
	Raw         json.RawMessage
	Message     string
	Error       string
}

// WorkdayInfo answers "is this date a working day?"
type WorkdayInfo struct {
	Status    Status
	Date      string
	IsWorkday bool
	Reason    string
	Message   string
	Error     string
}

// Holiday is one entry of an upcoming holidays list
type Holiday struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Week        string `json:"week"`
}

// MarshalJSON emits only the fields that are meaningful for the status, so a
// no-data answer never carries a misleading is_holiday=false.
func (d DateInfo) MarshalJSON() ([]byte, error) {
	switch d.Status {
	case StatusFound:
		return json.Marshal(struct {
			Status      Status          `json:"status"`
			Date        string          `json:"date"`
			IsHoliday   bool            `json:"is_holiday"`
			Description string          `json:"description"`
			Week        string          `json:"week"`
			Raw         json.RawMessage `json:"raw,omitempty"`
		}{d.Status, d.Date, d.IsHoliday, d.Description, d.Week, d.Raw})
	case StatusInvalidInput:
		return json.Marshal(struct {
			Status Status `json:"status"`
			Error  string `json:"error"`
		}{d.Status, d.Error})
	default:
		return json.Marshal(struct {
			Status  Status `json:"status"`
			Date    string `json:"date"`
			Message string `json:"message"`
		}{StatusNoData, d.Date, d.Message})
	}
}

// MarshalJSON mirrors DateInfo.MarshalJSON
func (w WorkdayInfo) MarshalJSON() ([]byte, error) {
	switch w.Status {
	case StatusFound:
		return json.Marshal(struct {
			Status    Status `json:"status"`
			Date      string `json:"date"`
			IsWorkday bool   `json:"is_workday"`
			Reason    string `json:"reason"`
		}{w.Status, w.Date, w.IsWorkday, w.Reason})
	case StatusInvalidInput:
		return json.Marshal(struct {
			Status Status `json:"status"`
			Error  string `json:"error"`
		}{w.Status, w.Error})
	default:
		return json.Marshal(struct {
			Status  Status `json:"status"`
			Date    string `json:"date"`
			Message string `json:"message"`
		}{StatusNoData, w.Date, w.Message})
	}
}
