package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// endpoint one versioned api root
type endpoint struct {
	apiVersion  string
	middlewares []echo.MiddlewareFunc
	groups      []*apiGroup
}

type apiGroup struct {
	prefix      string
	middlewares []echo.MiddlewareFunc
	routes      []*route
}

type route struct {
	method      string
	path        string
	handler     echo.HandlerFunc
	middlewares []echo.MiddlewareFunc
}

var routeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// createEndpoint registers every route of def and returns them in declaration order.
// An unknown method or a path registered twice for the same method is a programming error and panics.
func createEndpoint(app *echo.Echo, def *endpoint) []*echo.Route {
	root := app.Group("/"+strings.TrimPrefix(def.apiVersion, "/"), def.middlewares...)

	var (
		registered []*echo.Route
		seen       = make(map[string]bool)
	)
	for _, group := range def.groups {
		echoGroup := root.Group(group.prefix, group.middlewares...)
		for _, api := range group.routes {
			method := strings.ToUpper(api.method)
			if !routeMethods[method] {
				panic(fmt.Errorf("createEndpoint: unknown method %s", api.method))
			}
			key := method + " " + group.prefix + api.path
			if seen[key] {
				panic(fmt.Errorf("createEndpoint: duplicated route %s", key))
			}
			seen[key] = true
			registered = append(registered, echoGroup.Add(method, api.path, api.handler, api.middlewares...))
		}
	}
	return registered
}
