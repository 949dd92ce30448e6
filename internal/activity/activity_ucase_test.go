package activity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pot-code/focus-tracker/internal/infrastructure/event"
	"github.com/pot-code/focus-tracker/internal/infrastructure/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	items map[string]*ActivityModel
}

func newMemRepo(items ...*ActivityModel) *memRepo {
	repo := &memRepo{items: make(map[string]*ActivityModel)}
	for _, a := range items {
		repo.items[a.ID] = a
	}
	return repo
}

func (r *memRepo) owned(userID string) []*ActivityModel {
	var out []*ActivityModel
	for _, a := range r.items {
		if a.UserID == userID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func (r *memRepo) FindRecent(ctx context.Context, userID string, limit int) ([]*ActivityModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.owned(userID)
	out := make([]*ActivityModel, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *memRepo) FindInRange(ctx context.Context, userID string, start, end time.Time) ([]*ActivityModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ActivityModel
	for _, a := range r.owned(userID) {
		if !a.Timestamp.Before(start) && !a.Timestamp.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) FindByID(ctx context.Context, id string) (*ActivityModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *memRepo) Save(ctx context.Context, a *ActivityModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.items[a.ID] = &copied
	return nil
}

func (r *memRepo) Update(ctx context.Context, a *ActivityModel) error {
	return r.Save(ctx, a)
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type recordingPublisher struct {
	events []*event.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt *event.ActivityEvent) error {
	p.events = append(p.events, evt)
	return p.err
}

var fixedNow = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func sequentialIDs() uuid.Generator {
	n := 0
	return uuid.GeneratorFunc(func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	})
}

func newTestUseCase(repo ActivityRepository, pub event.Publisher, loc *time.Location) *ActivityUseCaseImpl {
	return NewActivityUseCase(repo, sequentialIDs(), pub, loc).WithClock(func() time.Time { return fixedNow })
}

func TestCreateActivity(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	uc := newTestUseCase(repo, pub, time.UTC)

	a, err := uc.Create(context.Background(), "u1", &ActivityInput{Name: "  Deep work  ", Duration: 90, Category: "Work"})
	require.NoError(t, err)

	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, "u1", a.UserID)
	assert.Equal(t, "Deep work", a.Name)
	assert.Equal(t, Work, a.Category)
	assert.True(t, fixedNow.Equal(a.Timestamp))
	assert.Len(t, repo.items, 1)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.ActivityCreated, pub.events[0].Type)
	assert.Equal(t, "u1", pub.events[0].UserID)
	assert.Equal(t, "id-1", pub.events[0].ActivityID)
}

func TestCreateActivityValidation(t *testing.T) {
	uc := newTestUseCase(newMemRepo(), nil, time.UTC)
	ctx := context.Background()

	cases := []struct {
		in   ActivityInput
		want error
	}{
		{ActivityInput{Name: "x", Duration: 30, Category: "Sleep"}, ErrUnknownCategory},
		{ActivityInput{Name: "x", Duration: 30, Category: "work"}, ErrUnknownCategory},
		{ActivityInput{Name: "x", Duration: 0, Category: "Work"}, ErrInvalidDuration},
		{ActivityInput{Name: "x", Duration: 1441, Category: "Work"}, ErrInvalidDuration},
		{ActivityInput{Name: "   ", Duration: 30, Category: "Work"}, ErrInvalidName},
		{ActivityInput{Name: strings.Repeat("n", 101), Duration: 30, Category: "Work"}, ErrInvalidName},
	}
	for _, c := range cases {
		in := c.in
		_, err := uc.Create(ctx, "u1", &in)
		assert.ErrorIs(t, err, c.want, "input %+v", c.in)
	}

	_, err := uc.Create(ctx, "u1", &ActivityInput{Name: strings.Repeat("n", 100), Duration: 1440, Category: "Other"})
	assert.NoError(t, err)
}

func TestCreateActivityIgnoresPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	uc := newTestUseCase(newMemRepo(), pub, time.UTC)

	_, err := uc.Create(context.Background(), "u1", &ActivityInput{Name: "run", Duration: 20, Category: "Exercise"})
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestUpdateActivity(t *testing.T) {
	logged := fixedNow.Add(-48 * time.Hour)
	repo := newMemRepo(&ActivityModel{ID: "a1", UserID: "u1", Name: "read", Duration: 10, Category: Study, Timestamp: logged})
	pub := &recordingPublisher{}
	uc := newTestUseCase(repo, pub, time.UTC)
	ctx := context.Background()

	_, err := uc.Update(ctx, "u1", "missing", &ActivityInput{Name: "x", Duration: 1, Category: "Work"})
	assert.ErrorIs(t, err, ErrActivityNotFound)

	_, err = uc.Update(ctx, "u2", "a1", &ActivityInput{Name: "x", Duration: 1, Category: "Work"})
	assert.ErrorIs(t, err, ErrNotOwner)

	a, err := uc.Update(ctx, "u1", "a1", &ActivityInput{Name: "write", Duration: 45, Category: "Work"})
	require.NoError(t, err)
	assert.Equal(t, "write", a.Name)
	assert.Equal(t, 45, a.Duration)
	assert.True(t, logged.Equal(a.Timestamp))
	assert.True(t, fixedNow.Equal(a.UpdatedAt))
	assert.Equal(t, Work, repo.items["a1"].Category)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.ActivityUpdated, pub.events[0].Type)
}

func TestDeleteActivity(t *testing.T) {
	repo := newMemRepo(&ActivityModel{ID: "a1", UserID: "u1", Duration: 10, Category: Study, Timestamp: fixedNow})
	pub := &recordingPublisher{}
	uc := newTestUseCase(repo, pub, time.UTC)
	ctx := context.Background()

	assert.ErrorIs(t, uc.Delete(ctx, "u2", "a1"), ErrNotOwner)
	assert.Len(t, repo.items, 1)
	assert.ErrorIs(t, uc.Delete(ctx, "u1", "nope"), ErrActivityNotFound)

	require.NoError(t, uc.Delete(ctx, "u1", "a1"))
	assert.Empty(t, repo.items)
	require.Len(t, pub.events, 1)
	assert.Equal(t, event.ActivityDeleted, pub.events[0].Type)
	assert.Nil(t, pub.events[0].Activity)
}

func TestListRecent(t *testing.T) {
	repo := newMemRepo()
	for i := 0; i < RecentLimit+5; i++ {
		repo.items[fmt.Sprint(i)] = &ActivityModel{ID: fmt.Sprint(i), UserID: "u1", Timestamp: fixedNow.Add(time.Duration(i) * time.Minute)}
	}
	repo.items["other"] = &ActivityModel{ID: "other", UserID: "u2", Timestamp: fixedNow.Add(time.Hour * 24)}
	uc := newTestUseCase(repo, nil, time.UTC)

	list, err := uc.ListRecent(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, RecentLimit)
	assert.Equal(t, fmt.Sprint(RecentLimit+4), list[0].ID)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].Timestamp.After(list[i].Timestamp))
	}
}

func TestWeeklyAnalytics(t *testing.T) {
	repo := newMemRepo()
	for _, a := range scenario() {
		a.UserID = "u1"
		repo.items[a.ID] = a
	}
	// other user and previous week are never fetched
	repo.items["x1"] = &ActivityModel{ID: "x1", UserID: "u2", Duration: 500, Category: Work, Timestamp: at(1, 1)}
	repo.items["x2"] = &ActivityModel{ID: "x2", UserID: "u1", Duration: 500, Category: Work, Timestamp: at(-1, 1)}
	uc := newTestUseCase(repo, nil, time.UTC)

	s, err := uc.WeeklyAnalytics(context.Background(), "u1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 135, s.TotalMinutes)
	assert.Equal(t, 3, s.TotalActivities)
	assert.Equal(t, 19, s.AveragePerDay)
	assert.Equal(t, scenarioWeek.Start, s.WeekStart)

	prev, err := uc.WeeklyAnalytics(context.Background(), "u1", at(-1, 12))
	require.NoError(t, err)
	assert.Equal(t, 500, prev.TotalMinutes)
	assert.Equal(t, 500, prev.DailyBuckets[time.Saturday].Total)
}

func TestWeeklyAnalyticsWeekFollowsRefLocation(t *testing.T) {
	service := time.FixedZone("UTC+8", 8*3600)
	caller := time.FixedZone("UTC-5", -5*3600)
	uc := newTestUseCase(newMemRepo(), nil, service)

	// Saturday evening for the caller is already Sunday in the service location
	s, err := uc.WeeklyAnalytics(context.Background(), "u1", time.Date(2024, 3, 16, 20, 0, 0, 0, caller))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, caller), s.WeekStart)

	s, err = uc.WeeklyAnalytics(context.Background(), "u1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, service), s.WeekStart)
}

func TestWeeklyAnalyticsFailsOnCorruptRecord(t *testing.T) {
	repo := newMemRepo(&ActivityModel{ID: "bad", UserID: "u1", Duration: 5, Category: "Sleep", Timestamp: fixedNow})
	uc := newTestUseCase(repo, nil, time.UTC)

	_, err := uc.WeeklyAnalytics(context.Background(), "u1", fixedNow)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCalendarGroupsByLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	repo := newMemRepo(
		&ActivityModel{ID: "a1", UserID: "u1", Duration: 10, Category: Work, Timestamp: time.Date(2024, 2, 29, 17, 0, 0, 0, time.UTC)},
		&ActivityModel{ID: "a2", UserID: "u1", Duration: 20, Category: Work, Timestamp: time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)},
		&ActivityModel{ID: "a3", UserID: "u1", Duration: 30, Category: Work, Timestamp: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)},
		&ActivityModel{ID: "a4", UserID: "u1", Duration: 40, Category: Work, Timestamp: time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC)},
	)
	uc := newTestUseCase(repo, nil, loc)

	view, err := uc.Calendar(context.Background(), "u1", 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Month)
	assert.Equal(t, 2024, view.Year)
	require.Len(t, view.Activities, 2)
	require.Len(t, view.Activities["2024-03-01"], 1)
	assert.Equal(t, "a1", view.Activities["2024-03-01"][0].ID)
	require.Len(t, view.Activities["2024-03-02"], 2)
	assert.Equal(t, "a2", view.Activities["2024-03-02"][0].ID)
	assert.Equal(t, "a3", view.Activities["2024-03-02"][1].ID)

	current, err := uc.Calendar(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Month)
	assert.Equal(t, 2024, current.Year)
}

func TestToday(t *testing.T) {
	repo := newMemRepo(
		&ActivityModel{ID: "y1", UserID: "u1", Duration: 30, Category: Work, Timestamp: fixedNow.Add(-24 * time.Hour)},
		&ActivityModel{ID: "t1", UserID: "u1", Duration: 45, Category: Work, Timestamp: fixedNow.Add(-time.Hour)},
		&ActivityModel{ID: "t2", UserID: "u1", Duration: 15, Category: Break, Timestamp: fixedNow},
		&ActivityModel{ID: "old", UserID: "u1", Duration: 99, Category: Break, Timestamp: fixedNow.Add(-72 * time.Hour)},
	)
	uc := newTestUseCase(repo, nil, time.UTC)

	stats, err := uc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 60, stats.TodayMinutes)
	assert.Equal(t, 2, stats.TodayActivities)
	assert.Equal(t, 30, stats.YesterdayMinutes)
	assert.Equal(t, "+100% vs yesterday", stats.Trend.Label)
	assert.True(t, stats.Trend.Up)
}
