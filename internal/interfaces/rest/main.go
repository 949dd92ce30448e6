package rest

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/focus-tracker/internal/activity"
	infra "github.com/pot-code/focus-tracker/internal/infrastructure"
	"github.com/pot-code/focus-tracker/internal/infrastructure/auth"
	"github.com/pot-code/focus-tracker/internal/infrastructure/driver"
	"github.com/pot-code/focus-tracker/internal/infrastructure/event"
	"github.com/pot-code/focus-tracker/internal/infrastructure/validate"
	"github.com/pot-code/focus-tracker/internal/interfaces/rest/handler"
	"github.com/pot-code/focus-tracker/internal/interfaces/rest/middleware"
	"github.com/pot-code/focus-tracker/internal/user"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/zap"
)

// Dependencies everything the http transport is built on
type Dependencies struct {
	Option          *infra.AppConfig
	Logger          *zap.Logger
	KV              driver.KeyValueDB
	Probes          []driver.Pinger
	Hub             *event.Hub
	UserUseCase     user.UserUseCase
	ActivityUseCase activity.ActivityUseCase
}

// NewServer create http transport server
func NewServer(deps *Dependencies) *echo.Echo {
	var (
		option    = deps.Option
		logger    = deps.Logger
		app       = echo.New()
		validator = validate.NewValidator()
		websocket = infra.NewWebsocket()
		blacklist = auth.NewTokenBlacklist(deps.KV)
		jwtUtil   = auth.NewJWTUtil(option.Security.JWTMethod,
			option.Security.JWTSecret,
			option.Security.TokenName,
			option.SessionTimeout)
		jwtMiddleware = middleware.VerifyToken(jwtUtil, &middleware.ValidateTokenOption{
			InBlackList: blacklist.IsRevoked,
		})
		refreshMiddleware = middleware.RefreshToken(jwtUtil, &middleware.RefreshTokenOption{
			Threshold: option.SessionRefresh,
		})
		skipProbes = func(e echo.Context) bool {
			uri := e.Request().RequestURI
			return strings.HasPrefix(uri, "/healthz") || strings.HasPrefix(uri, "/metrics")
		}
	)
	app.HideBanner = true

	registerLivenessProbe(app, deps.Probes)
	if option.DevOP.Metrics {
		app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	if option.Env == infra.EnvDevelopment {
		registerProfileEndpoints(app)

		app.Use(middleware.Logging(logger, &middleware.LoggingConfig{
			Skipper: skipProbes,
		}))
	}
	app.Use(middleware.ErrorHandling(
		&middleware.ErrorHandlingOption{
			Handler: internalError(logger),
		},
	))
	app.Use(middleware.RequestMetrics(skipProbes))
	app.Use(echo_middleware.Secure())
	if option.DevOP.APM {
		app.Use(apmechov4.Middleware())
	}
	app.Use(echo_middleware.CORS())
	app.Use(middleware.AbortRequest(&middleware.AbortRequestOption{
		Timeout: option.RequestTimeout,
	}))

	var (
		UserHandler     = handler.NewUserHandler(jwtUtil, blacklist, deps.UserUseCase, validator)
		ActivityHandler = handler.NewActivityHandler(deps.ActivityUseCase, jwtUtil, validator)
		LiveHandler     = handler.NewLiveHandler(deps.Hub, websocket, jwtUtil)
		authenticated   = []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware}
	)

	routes := createEndpoint(app,
		&endpoint{
			apiVersion:  "api/v1",
			middlewares: []echo.MiddlewareFunc{echo_middleware.RequestID(), middleware.SetTraceLogger(logger)},
			groups: []*apiGroup{
				{
					prefix: "/auth",
					routes: []*route{
						{"POST", "/signup", UserHandler.HandleSignUp, nil},
						{"POST", "/login", UserHandler.HandleSignIn, nil},
						{"GET", "/exists", UserHandler.HandleUserExists, nil},
						{"POST", "/logout", UserHandler.HandleSignOut, []echo.MiddlewareFunc{jwtMiddleware}},
						{"GET", "/me", UserHandler.HandleMe, authenticated},
					},
				},
				{
					prefix:      "/activities",
					middlewares: authenticated,
					routes: []*route{
						{"GET", "", ActivityHandler.HandleList, nil},
						{"POST", "", ActivityHandler.HandleCreate, nil},
						{"GET", "/calendar", ActivityHandler.HandleCalendar, nil},
						{"GET", "/analytics", ActivityHandler.HandleAnalytics, nil},
						{"GET", "/today", ActivityHandler.HandleToday, nil},
						{"PUT", "/:id", ActivityHandler.HandleUpdate, nil},
						{"DELETE", "/:id", ActivityHandler.HandleDelete, nil},
					},
				},
				{
					prefix:      "/ws",
					middlewares: []echo.MiddlewareFunc{jwtMiddleware},
					routes: []*route{
						{"GET", "/activities", LiveHandler.HandleStream, nil},
					},
				},
			},
		})

	printRoutes(routes, logger)
	return app
}

// Serve start the server and block until ctx is done
func Serve(ctx context.Context, app *echo.Echo, option *infra.AppConfig) error {
	errc := make(chan error, 1)
	go func() {
		errc <- app.Start(fmt.Sprintf("%s:%d", option.Host, option.Port))
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), option.RequestTimeout)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	}
}

const internalErrorDetail = "Something went wrong on our side, please retry later"

// internalError replies a generic 500, the cause is only logged
func internalError(logger *zap.Logger) func(c echo.Context, err error) {
	return func(c echo.Context, err error) {
		traceID := c.Response().Header().Get(echo.HeaderXRequestID)
		if !c.Response().Committed {
			c.JSON(http.StatusInternalServerError,
				handler.NewRESTStandardError(http.StatusInternalServerError, internalErrorDetail).SetTraceID(traceID),
			)
		}
		logger.Error(err.Error(), zap.String("trace.id", traceID), zap.String("route", c.Path()))
	}
}

func printRoutes(routes []*echo.Route, logger *zap.Logger) {
	for _, route := range routes {
		logger.Info("Registered route", zap.String("method", route.Method), zap.String("path", route.Path))
	}
}

func registerLivenessProbe(app *echo.Echo, probes []driver.Pinger) {
	app.GET("/healthz", func(c echo.Context) error {
		for _, p := range probes {
			if p.Ping() != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
}

func registerProfileEndpoints(app *echo.Echo) {
	expvarHandler := expvar.Handler()
	app.GET("/debug/vars", func(c echo.Context) error {
		expvarHandler.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/", func(c echo.Context) error {
		pprof.Index(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/:name", func(c echo.Context) error {
		switch c.Param("name") {
		case "cmdline":
			pprof.Cmdline(c.Response().Writer, c.Request())
		case "profile":
			pprof.Profile(c.Response().Writer, c.Request())
		case "symbol":
			pprof.Symbol(c.Response().Writer, c.Request())
		case "trace":
			pprof.Trace(c.Response().Writer, c.Request())
		default:
			pprof.Handler(c.Param("name")).ServeHTTP(c.Response().Writer, c.Request())
		}
		return nil
	})
}
