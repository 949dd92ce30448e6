package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pot-code/focus-tracker/internal/infrastructure/logging"
	"github.com/pot-code/focus-tracker/internal/infrastructure/uuid"
	"go.elastic.co/apm"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserUseCaseImpl ...
type UserUseCaseImpl struct {
	UserRepository UserRepository
	UUIDGenerator  uuid.Generator
	MaxRetry       int
	RetryTimeout   time.Duration
	HashCost       int
	now            func() time.Time
}

var _ UserUseCase = &UserUseCaseImpl{}

// NewUserUseCase maxRetry <= 0 disables the lockout
func NewUserUseCase(
	UserRepository UserRepository,
	UUIDGenerator uuid.Generator,
	MaxRetry int,
	RetryTimeout time.Duration,
) *UserUseCaseImpl {
	return &UserUseCaseImpl{
		UserRepository: UserRepository,
		UUIDGenerator:  UUIDGenerator,
		MaxRetry:       MaxRetry,
		RetryTimeout:   RetryTimeout,
		HashCost:       bcrypt.DefaultCost,
		now:            time.Now,
	}
}

// WithClock replace the wall clock
func (uu *UserUseCaseImpl) WithClock(now func() time.Time) *UserUseCaseImpl {
	uu.now = now
	return uu
}

// NormalizeEmail trimmed and lower cased
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp create a user
func (uu *UserUseCaseImpl) SignUp(ctx context.Context, in *SignUpInput) (*UserModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.SignUp", "service")
	defer apmSpan.End()

	ur := uu.UserRepository
	email := NormalizeEmail(in.Email)
	// search for existence
	if m, err := ur.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if m != nil {
		return nil, ErrDuplicatedUser
	}

	id, err := uu.UUIDGenerator.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}
	password, err := bcrypt.GenerateFromPassword([]byte(in.Password), uu.HashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	post := &UserModel{
		ID:        id,
		Email:     email,
		FullName:  strings.TrimSpace(in.FullName),
		Password:  string(password),
		CreatedAt: uu.now().UTC().Truncate(time.Millisecond),
	}
	if err := ur.SaveUser(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// SignIn check the credential, failed attempts are counted and lock the account for RetryTimeout
func (uu *UserUseCaseImpl) SignIn(ctx context.Context, email, password string) (*UserModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.SignIn", "service")
	defer apmSpan.End()

	ur := uu.UserRepository
	user, err := ur.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoSuchUser
	}

	now := uu.now()
	failed := user.LoginRetry
	if uu.MaxRetry > 0 && user.LoginRetry >= uu.MaxRetry {
		if now.Sub(time.UnixMilli(user.LastAttempt)) < uu.RetryTimeout {
			return nil, ErrTooManyRetry
		}
		user.LoginRetry = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, err
		}
		user.LoginRetry++
		user.LastAttempt = now.UnixMilli()
		if err := ur.UpdateLogin(ctx, user); err != nil {
			logging.ExtractLoggerFromContext(ctx).Warn("failed to record login attempt",
				zap.String("user.id", user.ID), zap.Error(err))
		}
		return nil, ErrNoSuchUser
	}

	if failed != 0 {
		user.LoginRetry = 0
		if err := ur.UpdateLogin(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// FindByID returns ErrNoSuchUser when missing
func (uu *UserUseCaseImpl) FindByID(ctx context.Context, id string) (*UserModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.FindByID", "service")
	defer apmSpan.End()

	user, err := uu.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoSuchUser
	}
	return user, nil
}

// Exists find if user exists in database
func (uu *UserUseCaseImpl) Exists(ctx context.Context, email string) (bool, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.Exists", "service")
	defer apmSpan.End()

	user, err := uu.UserRepository.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return user != nil, nil
}
