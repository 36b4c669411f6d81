package pricing

import (
	"math"
	"time"

	"deskly/pkg/model"
)

// Price computes the total for booking a workspace over [start, end):
// fractional hours times the hourly rate, rounded half-up to cents.
// Pure function; the interval is validated upstream.
func Price(workspace *model.Workspace, start, end time.Time) float64 {
	hours := end.Sub(start).Minutes() / 60
	return round2(hours * workspace.PricePerHour)
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
