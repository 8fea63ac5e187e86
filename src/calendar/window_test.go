package calendar

import (
	"errors"
	"testing"
	"time"

	"crmBackend/src/apperr"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := ParseReferenceDate(value)
	if err != nil {
		t.Fatalf("ParseReferenceDate(%q) error = %v", value, err)
	}
	return parsed
}

func TestResolveWindow(t *testing.T) {
	moscow, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("LoadLocation error = %v", err)
	}

	tests := []struct {
		name        string
		reference   string
		granularity Granularity
		loc         *time.Location
		wantStart   string
		wantEnd     string
	}{
		{
			name:        "day in UTC",
			reference:   "2025-03-10",
			granularity: GranularityDay,
			loc:         time.UTC,
			wantStart:   "2025-03-10T00:00:00Z",
			wantEnd:     "2025-03-10T23:59:59.999Z",
		},
		{
			name:        "day converts user timezone to UTC",
			reference:   "2025-03-10",
			granularity: GranularityDay,
			loc:         moscow,
			wantStart:   "2025-03-09T21:00:00Z",
			wantEnd:     "2025-03-10T20:59:59.999Z",
		},
		{
			name:        "week starts Monday",
			reference:   "2025-01-15", // среда
			granularity: GranularityWeek,
			loc:         time.UTC,
			wantStart:   "2025-01-13T00:00:00Z",
			wantEnd:     "2025-01-19T23:59:59.999Z",
		},
		{
			name:        "week containing Monday itself",
			reference:   "2025-01-13",
			granularity: GranularityWeek,
			loc:         time.UTC,
			wantStart:   "2025-01-13T00:00:00Z",
			wantEnd:     "2025-01-19T23:59:59.999Z",
		},
		{
			name:        "week containing Sunday",
			reference:   "2025-01-19",
			granularity: GranularityWeek,
			loc:         time.UTC,
			wantStart:   "2025-01-13T00:00:00Z",
			wantEnd:     "2025-01-19T23:59:59.999Z",
		},
		{
			name:        "leap year February",
			reference:   "2024-02-15",
			granularity: GranularityMonth,
			loc:         time.UTC,
			wantStart:   "2024-02-01T00:00:00Z",
			wantEnd:     "2024-02-29T23:59:59.999Z",
		},
		{
			name:        "December rolls over to January",
			reference:   "2025-12-05",
			granularity: GranularityMonth,
			loc:         time.UTC,
			wantStart:   "2025-12-01T00:00:00Z",
			wantEnd:     "2025-12-31T23:59:59.999Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ResolveWindow(mustDate(t, tt.reference), tt.granularity, tt.loc)
			if err != nil {
				t.Fatalf("ResolveWindow() error = %v", err)
			}

			wantStart, _ := time.Parse(time.RFC3339, tt.wantStart)
			wantEnd, _ := time.Parse(time.RFC3339, tt.wantEnd)
			if !start.Equal(wantStart) {
				t.Errorf("start = %v, want %v", start, wantStart)
			}
			if !end.Equal(wantEnd) {
				t.Errorf("end = %v, want %v", end, wantEnd)
			}
		})
	}
}

func TestResolveWindow_UnknownGranularity(t *testing.T) {
	_, _, err := ResolveWindow(mustDate(t, "2025-01-15"), Granularity("decade"), time.UTC)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestMonthWindow_BadMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		if _, _, err := MonthWindow(2025, month, time.UTC); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("MonthWindow(2025, %d) error = %v, want ErrValidation", month, err)
		}
	}
}

func TestParseReferenceDate_Malformed(t *testing.T) {
	for _, value := range []string{"", "2025-13-01", "15.01.2025", "not-a-date"} {
		if _, err := ParseReferenceDate(value); !errors.Is(err, apperr.ErrInvalidDate) {
			t.Errorf("ParseReferenceDate(%q) error = %v, want ErrInvalidDate", value, err)
		}
	}
}

func TestLoadUserLocation(t *testing.T) {
	if loc := LoadUserLocation(""); loc != time.UTC {
		t.Errorf("пустая таймзона должна давать UTC, получено %v", loc)
	}
	if loc := LoadUserLocation("Mars/Olympus"); loc != time.UTC {
		t.Errorf("некорректная таймзона должна давать UTC, получено %v", loc)
	}
	if loc := LoadUserLocation("Europe/Moscow"); loc.String() != "Europe/Moscow" {
		t.Errorf("LoadUserLocation = %v, want Europe/Moscow", loc)
	}
}
