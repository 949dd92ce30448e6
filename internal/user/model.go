package user

import (
	"context"
	"errors"
	"time"
)

type UserModel struct {
	ID          string    `json:"id" bson:"_id"`
	Email       string    `json:"email" bson:"email"`
	FullName    string    `json:"fullName" bson:"full_name"`
	Password    string    `json:"-" bson:"password"`
	LoginRetry  int       `json:"-" bson:"login_retry"`
	LastAttempt int64     `json:"-" bson:"last_attempt"` // unix milliseconds of the last failed login
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

// SignUpInput registration form
type SignUpInput struct {
	Email    string
	FullName string
	Password string
}

var (
	// ErrNoSuchUser failed to validate the credential
	ErrNoSuchUser = errors.New("No such user or password is incorrect")
	// ErrDuplicatedUser unique key constraint violation
	ErrDuplicatedUser = errors.New("Email is already registered")
	// ErrTooManyRetry login locked until the retry timeout passes
	ErrTooManyRetry = errors.New("Too many failed login attempts, please try again later")
)

type UserRepository interface {
	// FindByEmail returns nil when missing
	FindByEmail(ctx context.Context, email string) (*UserModel, error)
	// FindByID returns nil when missing
	FindByID(ctx context.Context, id string) (*UserModel, error)
	SaveUser(ctx context.Context, post *UserModel) error
	UpdateLogin(ctx context.Context, post *UserModel) error
}

type UserUseCase interface {
	SignUp(ctx context.Context, in *SignUpInput) (*UserModel, error)
	SignIn(ctx context.Context, email, password string) (*UserModel, error)
	FindByID(ctx context.Context, id string) (*UserModel, error)
	Exists(ctx context.Context, email string) (bool, error)
}
