package handler

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

//go:embed assets/graphiql.html
var assets embed.FS

// parsed once at startup; a broken asset is a build defect, not a
// request-time failure
var graphiqlTmpl = template.Must(template.ParseFS(assets, "assets/graphiql.html"))

type graphiqlData struct {
	Endpoint      template.JS
	Query         template.JS
	Variables     template.JS
	OperationName template.JS
	Result        template.JS
	DefaultQuery  template.JS
}

// renderGraphiQL writes the interactive IDE page for one request, with
// the request's parameters embedded as escaped JSON literals.
func renderGraphiQL(c echo.Context, cfg *Config, params *Params) error {
	var (
		data graphiqlData
		err  error
	)

	if data.Endpoint, err = jsonLiteral(graphiqlEndpoint(c, cfg)); err != nil {
		return err
	}
	if data.Query, err = jsonLiteral(nullableString(params.Query)); err != nil {
		return err
	}
	if data.Variables, err = jsonLiteral(params.Variables); err != nil {
		return err
	}
	if data.OperationName, err = jsonLiteral(nullableString(params.OperationName)); err != nil {
		return err
	}
	if data.Result, err = jsonLiteral(nil); err != nil {
		return err
	}

	var defaultQuery interface{}
	if cfg.GraphiQLConfig != nil && cfg.GraphiQLConfig.DefaultQuery != "" {
		defaultQuery = cfg.GraphiQLConfig.DefaultQuery
	}
	if data.DefaultQuery, err = jsonLiteral(defaultQuery); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := graphiqlTmpl.Execute(&buf, data); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(buf.Len()))
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// jsonLiteral marshals v for embedding inside a <script> block. Forward
// slashes are escaped so a value containing "</script>" cannot terminate
// the block early.
func jsonLiteral(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	b = bytes.ReplaceAll(b, []byte("/"), []byte(`\/`))
	return template.JS(b), nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
