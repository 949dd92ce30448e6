package user

import (
	"context"
	"errors"

	"github.com/pot-code/focus-tracker/internal/infrastructure/driver"
)

// UserSQL users table on MySQL or PostgreSQL
type UserSQL struct {
	Conn driver.ITransactionalDB
}

var _ UserRepository = &UserSQL{}

func NewUserSQLRepository(Conn driver.ITransactionalDB) *UserSQL {
	return &UserSQL{Conn}
}

func (repo *UserSQL) findOne(ctx context.Context, column, value string) (*UserModel, error) {
	row, err := repo.Conn.QueryContext(ctx, `SELECT "id", "email", "full_name", "password", "login_retry", "last_attempt", "created_at"
	FROM "users" WHERE "`+column+`" = $1`, value)
	if err != nil {
		return nil, err
	}
	defer row.Close()

	if row.Next() {
		user := new(UserModel)
		if err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.Password,
			&user.LoginRetry, &user.LastAttempt, &user.CreatedAt); err != nil {
			return nil, err
		}
		return user, nil
	}
	return nil, row.Err()
}

// FindByEmail query user by normalized email
func (repo *UserSQL) FindByEmail(ctx context.Context, email string) (*UserModel, error) {
	return repo.findOne(ctx, "email", email)
}

func (repo *UserSQL) FindByID(ctx context.Context, id string) (*UserModel, error) {
	return repo.findOne(ctx, "id", id)
}

func (repo *UserSQL) SaveUser(ctx context.Context, post *UserModel) error {
	_, err := repo.Conn.ExecContext(ctx, `INSERT INTO "users"("id", "email", "full_name", "password", "login_retry", "last_attempt", "created_at")
	VALUES($1, $2, $3, $4, $5, $6, $7)`,
		post.ID, post.Email, post.FullName, post.Password, post.LoginRetry, post.LastAttempt, post.CreatedAt)
	if errors.Is(err, driver.ErrDuplicateKey) {
		return ErrDuplicatedUser
	}
	return err
}

func (repo *UserSQL) UpdateLogin(ctx context.Context, post *UserModel) error {
	_, err := repo.Conn.ExecContext(ctx, `UPDATE "users"
	SET "login_retry" = $1,
		"last_attempt" = $2
	WHERE "id" = $3`, post.LoginRetry, post.LastAttempt, post.ID)
	return err
}
