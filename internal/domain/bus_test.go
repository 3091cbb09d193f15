package domain

import (
	"testing"
	"time"
)

func TestHasDeparted(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		departure time.Time
		want      bool
	}{
		{"future departure", now.Add(time.Minute), false},
		{"past departure", now.Add(-time.Minute), true},
		{"departure exactly now", now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &Bus{DepartureTime: tt.departure}
			if got := bus.HasDeparted(now); got != tt.want {
				t.Errorf("HasDeparted() = %v, want %v", got, tt.want)
			}
		})
	}
}
