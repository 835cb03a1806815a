package handler

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Config is the user-supplied handler configuration. Zero values fall
// back to the engine defaults; Schema is the only required field.
type Config struct {
	Schema *graphql.Schema

	// RootValue is passed to the engine as the execution root.
	RootValue interface{}

	// ContextFn derives the execution context handed to resolvers. When
	// nil the inbound request's context is used, with the echo context
	// attached so resolvers can reach the request via RequestContext.
	ContextFn func(c echo.Context) context.Context

	// Pretty switches the JSON response to two-space indentation.
	Pretty bool

	// GraphiQL toggles the in-browser IDE; GraphiQLConfig optionally
	// overrides its display defaults.
	GraphiQL       bool
	GraphiQLConfig *GraphiQLConfig

	// Extensions, when set, runs after execution; a non-empty return
	// value is attached to the response under the extensions key.
	Extensions ExtensionsFunc

	// ValidationRules run in addition to the standard rules.
	ValidationRules []graphql.ValidationRuleFn

	// FormatErrorFn rewrites each response error before serialization.
	FormatErrorFn func(gqlerrors.FormattedError) gqlerrors.FormattedError

	// Engine overrides, defaulting to graphql-go's implementations.
	ParseFn    ParseFunc
	ValidateFn ValidateFunc
	ExecuteFn  ExecuteFunc
}

// GraphiQLConfig overrides the IDE page display defaults.
type GraphiQLConfig struct {
	// Endpoint is the URL the IDE fetches against. It defaults to the
	// request's own URL with the query string stripped.
	Endpoint string

	// DefaultQuery pre-populates the editor on first load.
	DefaultQuery string
}

// ConfigFunc produces a per-request Config. It is called twice per
// request: once before the GraphQL parameters are known (params is nil)
// and once after, the second result being authoritative. Implementations
// must tolerate the double call.
type ConfigFunc func(c echo.Context, params *Params) (*Config, error)

// ParseFunc turns query text into a document.
type ParseFunc func(query string) (*ast.Document, error)

// ValidateFunc checks a document against a schema under the given rules.
type ValidateFunc func(schema *graphql.Schema, doc *ast.Document, rules []graphql.ValidationRuleFn) []gqlerrors.FormattedError

// ExecuteFunc runs a validated document.
type ExecuteFunc func(p graphql.ExecuteParams) (*graphql.Result, error)

// ExtensionsFunc computes response extensions from a finished execution.
type ExtensionsFunc func(ctx context.Context, p ExtensionsParams) (map[string]interface{}, error)

// ExtensionsParams is what the extensions hook is called with.
type ExtensionsParams struct {
	Document      *ast.Document
	Variables     map[string]interface{}
	OperationName string
	Result        *graphql.Result
}

// resolveConfig materializes the per-request configuration and enforces
// the schema invariant. Both the early (params-less) and the late call
// must yield a config with a schema.
func resolveConfig(fn ConfigFunc, c echo.Context, params *Params) (*Config, error) {
	cfg, err := fn(c, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve handler configuration")
	}

	if cfg == nil || cfg.Schema == nil {
		return nil, errors.New("handler configuration must contain a schema")
	}

	return cfg, nil
}

type requestContextKey struct{}

// RequestContext returns the echo context the execution context was
// derived from, when the default context rule is in effect.
func RequestContext(ctx context.Context) (echo.Context, bool) {
	c, ok := ctx.Value(requestContextKey{}).(echo.Context)
	return c, ok
}

// executionContext applies the default rule: the execution context is
// the inbound request's context, carrying the echo context itself.
func executionContext(cfg *Config, c echo.Context) context.Context {
	if cfg.ContextFn != nil {
		return cfg.ContextFn(c)
	}
	return context.WithValue(c.Request().Context(), requestContextKey{}, c)
}

// graphiqlEndpoint computes the URL the IDE page fetches against: the
// user's explicit endpoint if set, otherwise the request's own scheme,
// forwarded host (preferred) or host, and path without its query string.
func graphiqlEndpoint(c echo.Context, cfg *Config) string {
	if cfg.GraphiQLConfig != nil && cfg.GraphiQLConfig.Endpoint != "" {
		return cfg.GraphiQLConfig.Endpoint
	}

	host := c.Request().Header.Get("X-Forwarded-Host")
	if host == "" {
		host = c.Request().Host
	}

	return c.Scheme() + "://" + host + c.Request().URL.Path
}

func defaultParse(query string) (*ast.Document, error) {
	src := source.NewSource(&source.Source{
		Body: []byte(query),
		Name: "GraphQL request",
	})
	return parser.Parse(parser.ParseParams{Source: src})
}

func defaultValidate(schema *graphql.Schema, doc *ast.Document, rules []graphql.ValidationRuleFn) []gqlerrors.FormattedError {
	return graphql.ValidateDocument(schema, doc, rules).Errors
}

func defaultExecute(p graphql.ExecuteParams) (*graphql.Result, error) {
	return graphql.Execute(p), nil
}
