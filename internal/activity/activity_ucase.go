package activity

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pot-code/focus-tracker/internal/infrastructure/event"
	"github.com/pot-code/focus-tracker/internal/infrastructure/logging"
	"github.com/pot-code/focus-tracker/internal/infrastructure/metrics"
	"github.com/pot-code/focus-tracker/internal/infrastructure/uuid"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// ActivityUseCaseImpl ...
type ActivityUseCaseImpl struct {
	ActivityRepository ActivityRepository
	UUIDGenerator      uuid.Generator
	Publisher          event.Publisher
	Location           *time.Location // day and week boundaries
	now                func() time.Time
}

var _ ActivityUseCase = &ActivityUseCaseImpl{}

// NewActivityUseCase publisher may be nil
func NewActivityUseCase(
	ActivityRepository ActivityRepository,
	UUIDGenerator uuid.Generator,
	Publisher event.Publisher,
	Location *time.Location,
) *ActivityUseCaseImpl {
	if Location == nil {
		Location = time.Local
	}
	return &ActivityUseCaseImpl{
		ActivityRepository: ActivityRepository,
		UUIDGenerator:      UUIDGenerator,
		Publisher:          Publisher,
		Location:           Location,
		now:                time.Now,
	}
}

// WithClock replace the wall clock
func (au *ActivityUseCaseImpl) WithClock(now func() time.Time) *ActivityUseCaseImpl {
	au.now = now
	return au
}

// clock current time in the service location, millisecond precision like the stores
func (au *ActivityUseCaseImpl) clock() time.Time {
	return au.now().In(au.Location).Truncate(time.Millisecond)
}

func validateInput(in *ActivityInput) (string, Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", "", ErrInvalidName
	}
	if in.Duration < MinDuration || in.Duration > MaxDuration {
		return "", "", ErrInvalidDuration
	}
	category, err := ParseCategory(in.Category)
	if err != nil {
		return "", "", err
	}
	return name, category, nil
}

// ListRecent newest RecentLimit activities
func (au *ActivityUseCaseImpl) ListRecent(ctx context.Context, userID string) ([]*ActivityModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ActivityUseCaseImpl.ListRecent", "service")
	defer apmSpan.End()

	return au.ActivityRepository.FindRecent(ctx, userID, RecentLimit)
}

// Create log a new activity at the current time
func (au *ActivityUseCaseImpl) Create(ctx context.Context, userID string, in *ActivityInput) (*ActivityModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ActivityUseCaseImpl.Create", "service")
	defer apmSpan.End()

	name, category, err := validateInput(in)
	if err != nil {
		return nil, err
	}
	id, err := au.UUIDGenerator.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate activity id: %w", err)
	}

	now := au.clock()
	a := &ActivityModel{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Duration:  in.Duration,
		Category:  category,
		Timestamp: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := au.ActivityRepository.Save(ctx, a); err != nil {
		return nil, err
	}
	metrics.IncActivityChange("create")
	au.publish(ctx, event.ActivityCreated, a.UserID, a.ID, a)
	return a, nil
}

func (au *ActivityUseCaseImpl) findOwned(ctx context.Context, userID, id string) (*ActivityModel, error) {
	a, err := au.ActivityRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrActivityNotFound
	}
	if a.UserID != userID {
		return nil, ErrNotOwner
	}
	return a, nil
}

// Update replace name, duration and category, the timestamp is kept
func (au *ActivityUseCaseImpl) Update(ctx context.Context, userID, id string, in *ActivityInput) (*ActivityModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ActivityUseCaseImpl.Update", "service")
	defer apmSpan.End()

	a, err := au.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	name, category, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	a.Name = name
	a.Duration = in.Duration
	a.Category = category
	a.UpdatedAt = au.clock()
	if err := au.ActivityRepository.Update(ctx, a); err != nil {
		return nil, err
	}
	metrics.IncActivityChange("update")
	au.publish(ctx, event.ActivityUpdated, a.UserID, a.ID, a)
	return a, nil
}

func (au *ActivityUseCaseImpl) Delete(ctx context.Context, userID, id string) error {
	apmSpan, _ := apm.StartSpan(ctx, "ActivityUseCaseImpl.Delete", "service")
	defer apmSpan.End()

	a, err := au.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := au.ActivityRepository.Delete(ctx, a.ID); err != nil {
		return err
	}
	metrics.IncActivityChange("delete")
	au.publish(ctx, event.ActivityDeleted, a.UserID, a.ID, nil)
	return nil
}

// Calendar activities of one month grouped by local calendar date, zero year or month means the current one
func (au *ActivityUseCaseImpl) Calendar(ctx context.Context, userID string, year int, month time.Month) (*CalendarView, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ActivityUseCaseImpl.Calendar", "service")
	defer apmSpan.End()

	cy, cm, _ := au.clock().Date()
	if year == 0 {
		year = cy
	}
	if month == 0 {
		month = cm
	}
	w := MonthWindow(year, month, au.Location)
	activities, err := au.ActivityRepository.FindInRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*ActivityModel)
	for _, a := range activities {
		key := a.Timestamp.In(au.Location).Format(dateLayout)
		grouped[key] = append(grouped[key], a)
	}
	return &CalendarView{Month: int(month), Year: year, Activities: grouped}, nil
}

// WeeklyAnalytics summary of the week holding ref. The week is cut in ref's own location,
// a zero ref means now in the service location.
func (au *ActivityUseCaseImpl) WeeklyAnalytics(ctx context.Context, userID string, ref time.Time) (*WeeklySummary, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ActivityUseCaseImpl.WeeklyAnalytics", "service")
	defer apmSpan.End()

	start := time.Now()
	if ref.IsZero() {
		ref = au.clock().In(au.Location)
	}
	w := WeekOf(ref)
	activities, err := au.ActivityRepository.FindInRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(w, activities)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize week %s: %w", w.Start.Format(dateLayout), err)
	}
	metrics.ObserveAnalytics(time.Since(start))
	return summary, nil
}

// Today totals of today and yesterday with the trend between them
func (au *ActivityUseCaseImpl) Today(ctx context.Context, userID string) (*TodayStats, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ActivityUseCaseImpl.Today", "service")
	defer apmSpan.End()

	today := DayWindow(au.clock())
	yesterday := DayWindow(today.Start.AddDate(0, 0, -1))
	activities, err := au.ActivityRepository.FindInRange(ctx, userID, yesterday.Start, today.End)
	if err != nil {
		return nil, err
	}

	stats := new(TodayStats)
	for _, a := range activities {
		switch {
		case today.Contains(a.Timestamp):
			stats.TodayMinutes += a.Duration
			stats.TodayActivities++
		case yesterday.Contains(a.Timestamp):
			stats.YesterdayMinutes += a.Duration
		}
	}
	stats.Trend = DailyTrend(stats.TodayMinutes, stats.YesterdayMinutes)
	return stats, nil
}

// publish failures are logged, the write already succeeded
func (au *ActivityUseCaseImpl) publish(ctx context.Context, typ event.Type, userID, id string, payload *ActivityModel) {
	if au.Publisher == nil {
		return
	}
	evt := &event.ActivityEvent{
		Type:       typ,
		UserID:     userID,
		ActivityID: id,
		OccurredAt: au.clock(),
	}
	if payload != nil {
		evt.Activity = payload
	}
	if err := au.Publisher.Publish(ctx, evt); err != nil {
		logging.ExtractLoggerFromContext(ctx).Warn("failed to publish activity event",
			zap.String("event.type", string(typ)),
			zap.String("activity.id", id),
			zap.Error(err))
	}
}
