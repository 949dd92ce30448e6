package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/focus-tracker/internal/infrastructure/auth"
	"github.com/pot-code/focus-tracker/internal/infrastructure/validate"
	"github.com/pot-code/focus-tracker/internal/user"
)

// UserHandler user related operations
type UserHandler struct {
	jwtUtil     *auth.JWTUtil
	blacklist   *auth.TokenBlacklist
	userUseCase user.UserUseCase
	validator   validate.Validator
}

// NewUserHandler create an user controller instance
func NewUserHandler(
	JWTUtil *auth.JWTUtil,
	Blacklist *auth.TokenBlacklist,
	UserUseCase user.UserUseCase,
	Validator validate.Validator,
) *UserHandler {
	return &UserHandler{
		jwtUtil:     JWTUtil,
		blacklist:   Blacklist,
		userUseCase: UserUseCase,
		validator:   Validator,
	}
}

type signUpForm struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type signInForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *user.UserModel `json:"user"`
}

func (uh *UserHandler) issueToken(c echo.Context, u *user.UserModel) error {
	tokenStr, err := uh.jwtUtil.GenerateTokenStr(&auth.Subject{ID: u.ID, Email: u.Email, FullName: u.FullName})
	if err != nil {
		return err
	}
	uh.jwtUtil.SetClientToken(c, tokenStr)
	return nil
}

// HandleSignUp ...
func (uh *UserHandler) HandleSignUp(c echo.Context) error {
	form := new(signUpForm)
	if ok, err := bindAndValidate(c, uh.validator, form); !ok {
		return err
	}

	u, err := uh.userUseCase.SignUp(c.Request().Context(), &user.SignUpInput{
		Email:    form.Email,
		FullName: form.FullName,
		Password: form.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicatedUser) {
			return standardError(c, http.StatusConflict, err)
		}
		return err
	}
	if err := uh.issueToken(c, u); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, &userResponse{u})
}

// HandleSignIn ...
func (uh *UserHandler) HandleSignIn(c echo.Context) error {
	form := new(signInForm)
	if ok, err := bindAndValidate(c, uh.validator, form); !ok {
		return err
	}

	u, err := uh.userUseCase.SignIn(c.Request().Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, user.ErrNoSuchUser):
		return standardError(c, http.StatusUnauthorized, err)
	case errors.Is(err, user.ErrTooManyRetry):
		return standardError(c, http.StatusForbidden, err)
	case err != nil:
		return err
	}
	if err := uh.issueToken(c, u); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &userResponse{u})
}

// HandleSignOut revoke the current token for the rest of its lifetime
func (uh *UserHandler) HandleSignOut(c echo.Context) error {
	ju := uh.jwtUtil
	claims := ju.GetContextToken(c)
	tokenStr, err := ju.ExtractToken(c)
	if err != nil || claims == nil {
		return c.NoContent(http.StatusUnauthorized)
	}

	if err := uh.blacklist.Revoke(c.Request().Context(), tokenStr, claims.TimeRemaining()); err != nil {
		return err
	}
	ju.ClearClientToken(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// HandleMe current user
func (uh *UserHandler) HandleMe(c echo.Context) error {
	claims := uh.jwtUtil.GetContextToken(c)
	u, err := uh.userUseCase.FindByID(c.Request().Context(), claims.UID)
	if err != nil {
		if errors.Is(err, user.ErrNoSuchUser) {
			return standardError(c, http.StatusNotFound, err)
		}
		return err
	}
	return c.JSON(http.StatusOK, &userResponse{u})
}

// HandleUserExists ...
func (uh *UserHandler) HandleUserExists(c echo.Context) error {
	email := c.QueryParam("email")
	if errs := uh.validator.Var(c.Request().Header.Get(acceptLanguage), "email", email, "required,email"); errs != nil {
		return c.JSON(http.StatusBadRequest, NewRESTValidationError(http.StatusBadRequest, "Failed to validate params", errs))
	}

	existing, err := uh.userUseCase.Exists(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, existing)
}
