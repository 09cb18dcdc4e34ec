package models

import (
	"testing"
	"time"
)

func TestFitCategory(t *testing.T) {
	testCases := []struct {
		name     string
		single   string
		list     []string
		category string
		want     CategoryFit
	}{
		{"exact", "Informatique", nil, "informatique", ExactFit},
		{"exact wins over list", "Droit", []string{"Droit"}, "droit", ExactFit},
		{"list", "Gestion", []string{"Finance", "INFORMATIQUE"}, "Informatique", ListFit},
		{"no match", "Gestion", []string{"Finance"}, "Droit", NoFit},
		{"empty category", "Droit", []string{"Droit"}, "", NoFit},
		{"substring is not a match", "Informatique appliquée", nil, "Informatique", NoFit},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FitCategory(tc.single, tc.list, tc.category); got != tc.want {
				t.Errorf("FitCategory(%q, %v, %q) = %v, want %v", tc.single, tc.list, tc.category, got, tc.want)
			}
		})
	}
}

func TestTimeRangeStart(t *testing.T) {
	// Wednesday
	now := time.Date(2024, time.May, 15, 13, 30, 0, 0, time.UTC)

	if got := RangeWeek.Start(now); !got.Equal(time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week start = %v", got)
	}
	if got := RangeMonth.Start(now); !got.Equal(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month start = %v", got)
	}
	if got := RangeYear.Start(now); !got.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("year start = %v", got)
	}
	if ParseTimeRange("decade") != RangeWeek {
		t.Errorf("unknown ranges should fall back to week")
	}
}
