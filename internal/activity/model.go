package activity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Category closed set of activity categories
type Category string

// known categories
const (
	Work     Category = "Work"
	Study    Category = "Study"
	Exercise Category = "Exercise"
	Break    Category = "Break"
	Other    Category = "Other"
)

// Categories every category in display order
var Categories = [...]Category{Work, Study, Exercise, Break, Other}

// limits of a single activity
const (
	MinDuration   = 1
	MaxDuration   = 1440
	MaxNameLength = 100
	RecentLimit   = 50
)

var (
	// ErrActivityNotFound no activity with the given id
	ErrActivityNotFound = errors.New("Activity not found")
	// ErrNotOwner activity belongs to someone else
	ErrNotOwner = errors.New("Not authorized to modify this activity")
	// ErrUnknownCategory category outside the closed set
	ErrUnknownCategory = errors.New("Invalid category. Must be Work, Study, Exercise, Break, or Other")
	// ErrOutsideWindow activity timestamp is not inside the aggregated window
	ErrOutsideWindow = errors.New("activity outside the aggregation window")
	// ErrInvalidDuration duration outside [MinDuration, MaxDuration]
	ErrInvalidDuration = fmt.Errorf("Duration must be between %d and %d minutes", MinDuration, MaxDuration)
	// ErrInvalidName name is blank or too long
	ErrInvalidName = fmt.Errorf("Activity name is required and cannot exceed %d characters", MaxNameLength)
)

// ParseCategory accepts exactly one of the known category names
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c.index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (c Category) index() int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return -1
}

type ActivityModel struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Duration  int       `json:"duration" bson:"duration"` // minutes
	Category  Category  `json:"category" bson:"category"`
	Timestamp time.Time `json:"timestamp" bson:"ts"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// ActivityInput user supplied fields of an activity
type ActivityInput struct {
	Name     string
	Duration int
	Category string
}

// CalendarView activities of one month keyed by YYYY-MM-DD
type CalendarView struct {
	Month      int                         `json:"month"`
	Year       int                         `json:"year"`
	Activities map[string][]*ActivityModel `json:"activities"`
}

// TodayStats today compared to yesterday
type TodayStats struct {
	TodayMinutes     int   `json:"todayMinutes"`
	TodayActivities  int   `json:"todayActivities"`
	YesterdayMinutes int   `json:"yesterdayMinutes"`
	Trend            Trend `json:"trend"`
}

type ActivityRepository interface {
	// FindRecent newest first
	FindRecent(ctx context.Context, userID string, limit int) ([]*ActivityModel, error)
	// FindInRange start <= ts <= end, oldest first
	FindInRange(ctx context.Context, userID string, start, end time.Time) ([]*ActivityModel, error)
	// FindByID returns nil when missing
	FindByID(ctx context.Context, id string) (*ActivityModel, error)
	Save(ctx context.Context, a *ActivityModel) error
	Update(ctx context.Context, a *ActivityModel) error
	Delete(ctx context.Context, id string) error
}

type ActivityUseCase interface {
	ListRecent(ctx context.Context, userID string) ([]*ActivityModel, error)
	Create(ctx context.Context, userID string, in *ActivityInput) (*ActivityModel, error)
	Update(ctx context.Context, userID, id string, in *ActivityInput) (*ActivityModel, error)
	Delete(ctx context.Context, userID, id string) error
	Calendar(ctx context.Context, userID string, year int, month time.Month) (*CalendarView, error)
	WeeklyAnalytics(ctx context.Context, userID string, ref time.Time) (*WeeklySummary, error)
	Today(ctx context.Context, userID string) (*TodayStats, error)
}
