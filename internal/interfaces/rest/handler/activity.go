package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/focus-tracker/internal/activity"
	"github.com/pot-code/focus-tracker/internal/infrastructure/auth"
	"github.com/pot-code/focus-tracker/internal/infrastructure/validate"
)

type ActivityHandler struct {
	activityUseCase activity.ActivityUseCase
	validator       validate.Validator
	jwtUtil         *auth.JWTUtil
}

func NewActivityHandler(
	ActivityUseCase activity.ActivityUseCase,
	JWTUtil *auth.JWTUtil,
	Validator validate.Validator,
) *ActivityHandler {
	return &ActivityHandler{ActivityUseCase, Validator, JWTUtil}
}

type activityForm struct {
	Name     string `json:"name" validate:"required,max=100"`
	Duration int    `json:"duration" validate:"required,min=1,max=1440"`
	Category string `json:"category" validate:"required,oneof=Work Study Exercise Break Other"`
}

func (f *activityForm) input() *activity.ActivityInput {
	return &activity.ActivityInput{Name: f.Name, Duration: f.Duration, Category: f.Category}
}

type activityResponse struct {
	Activity *activity.ActivityModel `json:"activity"`
}

type activityListResponse struct {
	Count      int                       `json:"count"`
	Activities []*activity.ActivityModel `json:"activities"`
}

func (ah *ActivityHandler) userID(c echo.Context) string {
	return ah.jwtUtil.GetContextToken(c).UID
}

// mapActivityError writes the reply for known use case errors
func mapActivityError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, activity.ErrActivityNotFound):
		return standardError(c, http.StatusNotFound, err)
	case errors.Is(err, activity.ErrNotOwner):
		return standardError(c, http.StatusForbidden, err)
	case errors.Is(err, activity.ErrUnknownCategory),
		errors.Is(err, activity.ErrInvalidDuration),
		errors.Is(err, activity.ErrInvalidName):
		return standardError(c, http.StatusBadRequest, err)
	}
	return err
}

func (ah *ActivityHandler) HandleList(c echo.Context) error {
	list, err := ah.activityUseCase.ListRecent(c.Request().Context(), ah.userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &activityListResponse{Count: len(list), Activities: list})
}

func (ah *ActivityHandler) HandleCreate(c echo.Context) error {
	form := new(activityForm)
	if ok, err := bindAndValidate(c, ah.validator, form); !ok {
		return err
	}

	a, err := ah.activityUseCase.Create(c.Request().Context(), ah.userID(c), form.input())
	if err != nil {
		return mapActivityError(c, err)
	}
	return c.JSON(http.StatusCreated, &activityResponse{a})
}

func (ah *ActivityHandler) HandleUpdate(c echo.Context) error {
	form := new(activityForm)
	if ok, err := bindAndValidate(c, ah.validator, form); !ok {
		return err
	}

	a, err := ah.activityUseCase.Update(c.Request().Context(), ah.userID(c), c.Param("id"), form.input())
	if err != nil {
		return mapActivityError(c, err)
	}
	return c.JSON(http.StatusOK, &activityResponse{a})
}

func (ah *ActivityHandler) HandleDelete(c echo.Context) error {
	if err := ah.activityUseCase.Delete(c.Request().Context(), ah.userID(c), c.Param("id")); err != nil {
		return mapActivityError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleCalendar month and year default to the current ones
func (ah *ActivityHandler) HandleCalendar(c echo.Context) error {
	var (
		month int
		year  int
		err   error
	)
	if v := c.QueryParam("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil || month < 1 || month > 12 {
			return invalidParam(c, "month", "month must be an integer between 1 and 12")
		}
	}
	if v := c.QueryParam("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil || year < 1 || year > 9999 {
			return invalidParam(c, "year", "year must be an integer between 1 and 9999")
		}
	}

	view, err := ah.activityUseCase.Calendar(c.Request().Context(), ah.userID(c), year, time.Month(month))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// HandleAnalytics weekly summary of the week holding ref, now when omitted.
// The week is cut in ref's offset, so "2024-03-16T20:00:00-05:00" yields the caller's local week
// while a "Z" ref yields the UTC week.
func (ah *ActivityHandler) HandleAnalytics(c echo.Context) error {
	var ref time.Time
	if v := c.QueryParam("ref"); v != "" {
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return invalidParam(c, "ref", fmt.Sprintf("ref must be in RFC3339 layout, %s", err.Error()))
		}
		ref = at
	}

	summary, err := ah.activityUseCase.WeeklyAnalytics(c.Request().Context(), ah.userID(c), ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (ah *ActivityHandler) HandleToday(c echo.Context) error {
	stats, err := ah.activityUseCase.Today(c.Request().Context(), ah.userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
