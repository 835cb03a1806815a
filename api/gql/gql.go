package gql

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gqlbind/gqlbind/api/gql/schema"
	"github.com/gqlbind/gqlbind/internal/metrics"
	"github.com/gqlbind/gqlbind/pkg/env"
	"github.com/gqlbind/gqlbind/pkg/handler"
	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"
)

// Handler builds the GraphQL endpoint from the demo schema and the
// processed environment, and makes it injectable into the echo HTTP
// framework.
func Handler() echo.HandlerFunc {
	s, err := graphql.NewSchema(schema.New())
	if err != nil {
		panic(err)
	}

	vars := env.Variables()

	return Instrument(handler.New(&handler.Config{
		Schema:   &s,
		Pretty:   vars.Pretty,
		GraphiQL: vars.GraphiQL,
	}))
}

// Instrument records request metrics around a GraphQL handler.
func Instrument(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		// requests rejected before a document parses carry no operation
		operation := "none"
		if op, ok := c.Get(handler.OperationKey).(string); ok {
			operation = op
		}

		status := c.Response().Status
		metrics.RequestsTotal.
			WithLabelValues(operation, strconv.Itoa(status)).
			Inc()
		metrics.RequestDurationSeconds.
			WithLabelValues(operation).
			Observe(time.Since(start).Seconds())

		switch {
		case status >= http.StatusInternalServerError:
			metrics.ErrorsTotal.WithLabelValues("server").Inc()
		case status >= http.StatusBadRequest:
			metrics.ErrorsTotal.WithLabelValues("client").Inc()
		}

		return err
	}
}
