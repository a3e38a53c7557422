package dateutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.UTC)
	expected := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	result := StartOfDay(input)

	if !result.Equal(expected) {
		t.Errorf("StartOfDay(%v) = %v, want %v", input, result, expected)
	}
}

func TestTodayAt(t *testing.T) {
	taipei := time.FixedZone("CST", 8*60*60)

	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want string
	}{
		{
			name: "UTC evening is next day in Taipei",
			now:  time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC),
			loc:  taipei,
			want: "20260101",
		},
		{
			name: "Same day in UTC",
			now:  time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: "20251231",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCompact(TodayAt(tt.now, tt.loc))

			if got != tt.want {
				t.Errorf("TodayAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestTodayAtNilLocationUsesLocal(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := TodayAt(now, nil)

	if got.Location() != time.Local {
		t.Errorf("TodayAt(nil) location = %v, want Local", got.Location())
	}
}

func TestParseCompact(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"Valid date", "20260101", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"Leap day", "20240229", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), false},
		{"Impossible day", "20260230", time.Time{}, true},
		{"Dashed", "2026-01-01", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCompact(tt.input, nil)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCompact(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && !result.Equal(tt.want) {
				t.Errorf("ParseCompact(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}

func TestIsCompact(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"20260101", true},
		{"20260230", true},
		{"2026010", false},
		{"202601011", false},
		{"2026O101", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsCompact(tt.input); got != tt.want {
			t.Errorf("IsCompact(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestYearOf(t *testing.T) {
	year, err := YearOf("20261231")
	if err != nil {
		t.Fatalf("YearOf() error = %v", err)
	}
	if year != 2026 {
		t.Errorf("YearOf() = %d, want 2026", year)
	}

	if _, err := YearOf("20"); err == nil {
		t.Error("YearOf(\"20\") expected error, got nil")
	}
	if _, err := YearOf("abcd0101"); err == nil {
		t.Error("YearOf(\"abcd0101\") expected error, got nil")
	}
}
