package api

import (
	"context"
	"fmt"

	"github.com/gqlbind/gqlbind/api/gql"
	"github.com/gqlbind/gqlbind/internal/metrics"
	"github.com/gqlbind/gqlbind/pkg/env"
	"github.com/gqlbind/gqlbind/pkg/log"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
)

var e *echo.Echo

// Start launches gqlbind's API.
func Start(ctx context.Context) error {
	e = echo.New()
	e.HideBanner = true
	e.HidePort = true

	// health
	e.GET("/health", Health)

	// metrics
	prometheus.NewPrometheus("gqlbind", nil).Use(e)
	metrics.Register()

	// request logging
	e.Use(RequestLogger)

	// GraphQL: mounted for every method so the handler owns the
	// method-not-allowed response
	e.Any("/graphql", gql.Handler())

	go func() {
		<-ctx.Done()
		if err := Shutdown(); err != nil {
			log.Error("api shutdown failure", "error", err)
		}
	}()

	return e.Start(fmt.Sprintf(":%v", env.Variables().Port))
}

// Shutdown stops the API server.
func Shutdown() error {
	if e == nil {
		return nil
	}
	return e.Shutdown(context.Background())
}
