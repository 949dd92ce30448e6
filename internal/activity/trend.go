package activity

import (
	"fmt"
	"math"
)

// Trend today's minutes compared to yesterday's
type Trend struct {
	Label      string `json:"label"`
	Up         bool   `json:"up"`
	Percentage int    `json:"percentage"`
}

// DailyTrend percentage change rounded half toward +Inf
func DailyTrend(today, yesterday int) Trend {
	if yesterday == 0 {
		if today > 0 {
			return Trend{Label: "Start of streak", Up: true}
		}
		return Trend{Label: "No change"}
	}

	pct := int(math.Floor(float64(today-yesterday)/float64(yesterday)*100 + 0.5))
	label := fmt.Sprintf("%d%% vs yesterday", pct)
	if pct > 0 {
		label = "+" + label
	}
	return Trend{Label: label, Up: pct >= 0, Percentage: pct}
}
