package domain

import "testing"

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name      string
		departure string
		onset     string
		days      int
		ok        bool
	}{
		{"ten days", "2024-06-01", "2024-06-11", 10, true},
		{"same day", "2024-06-01", "2024-06-01", 0, true},
		{"negative when onset precedes departure", "2024-06-11", "2024-06-01", -10, true},
		{"across month boundary", "2024-05-25", "2024-06-20", 26, true},
		{"missing departure", "", "2024-06-11", 0, false},
		{"missing onset", "2024-06-01", "", 0, false},
		{"unparseable date", "yesterday", "2024-06-11", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := DaysBetween(tt.departure, tt.onset)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && days != tt.days {
				t.Errorf("expected %d days, got %d", tt.days, days)
			}
		})
	}
}

func TestOutsideWindow(t *testing.T) {
	tests := []struct {
		days    int
		outside bool
	}{
		{22, true},
		{30, true},
		{21, false},
		{10, false},
		{0, false},
		{-5, false},
	}

	for _, tt := range tests {
		if got := OutsideWindow(tt.days); got != tt.outside {
			t.Errorf("OutsideWindow(%d) = %v, want %v", tt.days, got, tt.outside)
		}
	}
}

func TestMERSNotice(t *testing.T) {
	tests := []struct {
		name      string
		country   string
		departure string
		onset     string
		want      bool
	}{
		{"special-risk country within window", "Saudi Arabia", "2024-06-01", "2024-06-10", true},
		{"alias resolves to special-risk country", "KSA", "2024-06-01", "2024-06-10", true},
		{"special-risk country outside its window", "Saudi Arabia", "2024-06-01", "2024-06-20", false},
		{"exactly fourteen days", "Oman", "2024-06-01", "2024-06-15", true},
		{"non special-risk country", "Nigeria", "2024-06-01", "2024-06-10", false},
		{"missing dates", "Saudi Arabia", "", "2024-06-10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MERSNotice(tt.country, tt.departure, tt.onset); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
