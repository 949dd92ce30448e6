package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/pot-code/focus-tracker/internal/infrastructure/driver"
)

// ActivitySQL activities table on MySQL or PostgreSQL
type ActivitySQL struct {
	Conn driver.ITransactionalDB
}

var _ ActivityRepository = &ActivitySQL{}

func NewActivitySQLRepository(Conn driver.ITransactionalDB) *ActivitySQL {
	return &ActivitySQL{Conn}
}

const activityColumns = `"id", "user_id", "name", "duration", "category", "ts", "created_at", "updated_at"`

func scanActivities(rows driver.ISQLRows) ([]*ActivityModel, error) {
	defer rows.Close()

	result := make([]*ActivityModel, 0)
	for rows.Next() {
		item := new(ActivityModel)
		var category string
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Duration, &category,
			&item.Timestamp, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.Category = Category(category)
		result = append(result, item)
	}
	return result, rows.Err()
}

func (repo *ActivitySQL) FindRecent(ctx context.Context, userID string, limit int) ([]*ActivityModel, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT `+activityColumns+`
	FROM "activities"
	WHERE "user_id" = $1
	ORDER BY "ts" DESC
	LIMIT `+fmt.Sprint(limit), userID)
	if err != nil {
		return nil, err
	}
	return scanActivities(rows)
}

func (repo *ActivitySQL) FindInRange(ctx context.Context, userID string, start, end time.Time) ([]*ActivityModel, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT `+activityColumns+`
	FROM "activities"
	WHERE "user_id" = $1 AND "ts" >= $2 AND "ts" <= $3
	ORDER BY "ts" ASC`, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return scanActivities(rows)
}

func (repo *ActivitySQL) FindByID(ctx context.Context, id string) (*ActivityModel, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT `+activityColumns+`
	FROM "activities"
	WHERE "id" = $1`, id)
	if err != nil {
		return nil, err
	}
	items, err := scanActivities(rows)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

func (repo *ActivitySQL) Save(ctx context.Context, a *ActivityModel) error {
	_, err := repo.Conn.ExecContext(ctx, `INSERT INTO "activities"(`+activityColumns+`)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UserID, a.Name, a.Duration, string(a.Category), a.Timestamp.UTC(), a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	return err
}

func (repo *ActivitySQL) Update(ctx context.Context, a *ActivityModel) error {
	_, err := repo.Conn.ExecContext(ctx, `UPDATE "activities"
	SET "name" = $1,
		"duration" = $2,
		"category" = $3,
		"updated_at" = $4
	WHERE "id" = $5`, a.Name, a.Duration, string(a.Category), a.UpdatedAt.UTC(), a.ID)
	return err
}

func (repo *ActivitySQL) Delete(ctx context.Context, id string) error {
	_, err := repo.Conn.ExecContext(ctx, `DELETE FROM "activities" WHERE "id" = $1`, id)
	return err
}
