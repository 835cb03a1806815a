// Package handler binds the graphql-go execution engine to echo's
// request/response cycle. It resolves GraphQL parameters from the query
// string and request body, decides between a JSON response and the
// GraphiQL IDE, drives the engine's parse/validate/execute pipeline and
// maps every failure onto an HTTP status and a GraphQL JSON error
// envelope.
//
// Mount it on an echo instance with:
//
//	h := handler.New(&handler.Config{Schema: &schema})
//	e.Any("/graphql", h)
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gqlbind/gqlbind/pkg/log"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/labstack/echo/v4"
)

// New returns an echo handler serving GraphQL requests with a fixed
// configuration.
func New(cfg *Config) echo.HandlerFunc {
	return NewDynamic(func(echo.Context, *Params) (*Config, error) {
		return cfg, nil
	})
}

// NewDynamic returns an echo handler whose configuration is resolved
// per request and may depend on the extracted GraphQL parameters. The
// handler always writes exactly one response and never returns an error
// to the framework.
func NewDynamic(fn ConfigFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, cfg, resp, err := run(fn, c)

		if err != nil {
			for k, vs := range errorHeader(err) {
				for _, v := range vs {
					c.Response().Header().Add(k, v)
				}
			}

			var errs []gqlerrors.FormattedError
			status, errs = mapError(err, status)

			if status >= http.StatusInternalServerError {
				log.Error("graphql request failed",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"error", err,
				)
			}

			if resp == nil {
				resp = &response{}
			}
			resp.errors = append(resp.errors, errs...)
		} else if resp == nil {
			// the GraphiQL short circuit already wrote the page
			return nil
		}

		return writeResult(c, cfg, status, resp)
	}
}

// run drives one request through the pipeline and produces exactly one
// of: an already-written IDE page (nil response, nil error), a result
// envelope, or a failure for the boundary above to map.
func run(fn ConfigFunc, c echo.Context) (int, *Config, *response, error) {
	status := http.StatusOK
	r := c.Request()

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		return status, nil, nil, methodNotAllowed("GET, POST", "GraphQL only supports GET and POST requests")
	}

	// early resolution, enough for structural checks before the body is
	// touched
	early, err := resolveConfig(fn, c, nil)
	if err != nil {
		return status, nil, nil, err
	}

	params, err := extractParams(c)
	if err != nil {
		return status, early, nil, err
	}

	// late resolution, this one is authoritative
	cfg, err := resolveConfig(fn, c, params)
	if err != nil {
		return status, nil, nil, err
	}

	// the IDE wins over every later check, including a missing query
	if cfg.GraphiQL && canDisplayGraphiQL(c, params) {
		return status, cfg, nil, renderGraphiQL(c, cfg, params)
	}

	if params.Query == "" {
		return status, cfg, nil, badRequest("must provide query string", nil)
	}

	// the schema itself must be sound before the query is blamed
	if cfg.Schema.QueryType() == nil {
		return status, cfg, nil, &resultError{
			status: http.StatusInternalServerError,
			errs:   gqlerrors.FormatErrors(errors.New("schema error: query root type must be provided")),
		}
	}

	parse := cfg.ParseFn
	if parse == nil {
		parse = defaultParse
	}
	doc, err := parse(params.Query)
	if err != nil {
		return status, cfg, nil, &resultError{
			status: http.StatusBadRequest,
			errs:   gqlerrors.FormatErrors(err),
		}
	}

	c.Set(OperationKey, operationType(doc, params.OperationName))

	validate := cfg.ValidateFn
	if validate == nil {
		validate = defaultValidate
	}
	rules := append(append([]graphql.ValidationRuleFn{}, graphql.SpecifiedRules...), cfg.ValidationRules...)
	if validationErrs := validate(cfg.Schema, doc, rules); len(validationErrs) > 0 {
		return status, cfg, nil, &resultError{
			status: http.StatusBadRequest,
			errs:   validationErrs,
		}
	}

	// GET may only read
	if r.Method == http.MethodGet {
		if op := operationType(doc, params.OperationName); op != ast.OperationTypeQuery {
			return status, cfg, nil, methodNotAllowed("POST",
				fmt.Sprintf("can only perform a %s operation from a POST request", op))
		}
	}

	execute := cfg.ExecuteFn
	if execute == nil {
		execute = defaultExecute
	}
	ctx := executionContext(cfg, c)
	result, err := execute(graphql.ExecuteParams{
		Schema:        *cfg.Schema,
		Root:          cfg.RootValue,
		AST:           doc,
		OperationName: params.OperationName,
		Args:          params.Variables,
		Context:       ctx,
	})
	if err != nil {
		// a failure to establish execution is the client's fault unless
		// it explicitly says otherwise
		if isTransport(err) {
			return status, cfg, nil, err
		}
		return status, cfg, nil, &resultError{
			status: http.StatusBadRequest,
			errs:   gqlerrors.FormatErrors(err),
		}
	}

	if cfg.Extensions != nil {
		ext, err := cfg.Extensions(ctx, ExtensionsParams{
			Document:      doc,
			Variables:     params.Variables,
			OperationName: params.OperationName,
			Result:        result,
		})
		if err != nil {
			return status, cfg, nil, fmt.Errorf("extensions hook: %w", err)
		}
		if len(ext) > 0 {
			if result.Extensions == nil {
				result.Extensions = ext
			} else {
				for k, v := range ext {
					result.Extensions[k] = v
				}
			}
		}
	}

	// a result without data means execution failed outright
	if result.Data == nil && status == http.StatusOK {
		status = http.StatusInternalServerError
	}

	return status, cfg, &response{
		data:       result.Data,
		hasData:    result.Data != nil,
		errors:     result.Errors,
		extensions: result.Extensions,
	}, nil
}

// operationType resolves the requested operation's type, falling back to
// query when the request is ambiguous so the engine can report the
// ambiguity itself.
func operationType(doc *ast.Document, operationName string) string {
	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			ops = append(ops, op)
		}
	}

	if operationName == "" {
		if len(ops) == 1 {
			return ops[0].Operation
		}
		return ast.OperationTypeQuery
	}

	for _, op := range ops {
		if op.Name != nil && op.Name.Value == operationName {
			return op.Operation
		}
	}

	return ast.OperationTypeQuery
}
