package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"deskly/pkg/model"
)

func ts(hour, minute int) time.Time {
	return time.Date(2026, 10, 5, hour, minute, 0, 0, time.UTC)
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		start time.Time
		end   time.Time
		want  float64
	}{
		{
			name:  "one hour at ten per hour",
			rate:  10,
			start: ts(11, 0),
			end:   ts(12, 0),
			want:  10.00,
		},
		{
			name:  "two hours",
			rate:  10,
			start: ts(9, 0),
			end:   ts(11, 0),
			want:  20.00,
		},
		{
			name:  "fractional hours",
			rate:  10,
			start: ts(9, 0),
			end:   ts(10, 30),
			want:  15.00,
		},
		{
			name:  "rounds half up to cents",
			rate:  12.55,
			start: ts(9, 0),
			end:   ts(9, 30),
			want:  6.28, // 12.55 * 0.5 = 6.275
		},
		{
			name:  "free workspace",
			rate:  0,
			start: ts(9, 0),
			end:   ts(17, 0),
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &model.Workspace{PricePerHour: tt.rate}
			assert.Equal(t, tt.want, Price(ws, tt.start, tt.end))
		})
	}
}

func TestPrice_Deterministic(t *testing.T) {
	ws := &model.Workspace{PricePerHour: 17.35}
	start, end := ts(8, 15), ts(13, 45)

	first := Price(ws, start, end)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Price(ws, start, end))
	}
}

func TestPrice_MonotonicInDuration(t *testing.T) {
	ws := &model.Workspace{PricePerHour: 9.99}
	start := ts(8, 0)

	prev := 0.0
	for minutes := 30; minutes <= 8*60; minutes += 30 {
		got := Price(ws, start, start.Add(time.Duration(minutes)*time.Minute))
		if got < prev {
			t.Fatalf("price decreased with longer duration: %v < %v at %d minutes", got, prev, minutes)
		}
		prev = got
	}
}
