package activity

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var dayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DailyBucket minutes logged on one day of the week
type DailyBucket struct {
	Day   string    `json:"day"`
	Date  time.Time `json:"date"`
	Total int       `json:"total"`
}

func (b DailyBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Day   string `json:"day"`
		Date  string `json:"date"`
		Total int    `json:"total"`
	}{b.Day, b.Date.Format(dateLayout), b.Total})
}

// CategoryBucket minutes logged on one category
type CategoryBucket struct {
	Category Category `json:"category"`
	Total    int      `json:"total"`
}

// WeeklySummary aggregated week, buckets are always complete and zero-filled
type WeeklySummary struct {
	WeekStart       time.Time
	WeekEnd         time.Time
	TotalMinutes    int
	TotalActivities int
	AveragePerDay   int
	DailyBuckets    [7]DailyBucket
	CategoryBuckets [len(Categories)]CategoryBucket
}

type weekRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type summaryJSON struct {
	TotalMinutes    int `json:"totalMinutes"`
	TotalActivities int `json:"totalActivities"`
	AveragePerDay   int `json:"averagePerDay"`
}

func (s *WeeklySummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		WeekRange            weekRangeJSON                   `json:"weekRange"`
		Summary              summaryJSON                     `json:"summary"`
		DailyTotals          [7]DailyBucket                  `json:"dailyTotals"`
		CategoryDistribution [len(Categories)]CategoryBucket `json:"categoryDistribution"`
	}{
		WeekRange:            weekRangeJSON{s.WeekStart.Format(dateLayout), s.WeekEnd.Format(dateLayout)},
		Summary:              summaryJSON{s.TotalMinutes, s.TotalActivities, s.AveragePerDay},
		DailyTotals:          s.DailyBuckets,
		CategoryDistribution: s.CategoryBuckets,
	})
}

// Summarize folds activities of one week into daily and category totals.
//
// Input order does not matter. An activity with an unknown category or a timestamp outside w
// fails the whole aggregation, nothing is dropped silently.
func Summarize(w Window, activities []*ActivityModel) (*WeeklySummary, error) {
	loc := w.Start.Location()
	s := &WeeklySummary{WeekStart: w.Start, WeekEnd: w.End}
	y, m, d := w.Start.Date()
	for i := range s.DailyBuckets {
		s.DailyBuckets[i] = DailyBucket{Day: dayLabels[i], Date: time.Date(y, m, d+i, 0, 0, 0, 0, loc)}
	}
	for i, c := range Categories {
		s.CategoryBuckets[i] = CategoryBucket{Category: c}
	}

	for _, a := range activities {
		ci := a.Category.index()
		if ci < 0 {
			return nil, fmt.Errorf("%w: %q in activity %s", ErrUnknownCategory, a.Category, a.ID)
		}
		if !w.Contains(a.Timestamp) {
			return nil, fmt.Errorf("%w: activity %s at %s", ErrOutsideWindow, a.ID, a.Timestamp.Format(time.RFC3339Nano))
		}
		s.DailyBuckets[a.Timestamp.In(loc).Weekday()].Total += a.Duration
		s.CategoryBuckets[ci].Total += a.Duration
		s.TotalMinutes += a.Duration
		s.TotalActivities++
	}
	s.AveragePerDay = averagePerDay(s.TotalMinutes)
	return s, nil
}

// averagePerDay total / 7 rounded half up, 7 is odd so a tie never happens
func averagePerDay(total int) int {
	return (total + 3) / 7
}
