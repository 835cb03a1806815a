package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/encoding/unicode"
)

// PreparsedBodyKey is the echo context key upstream middleware can use
// to hand the handler an already-parsed request body. A map value is
// used as the body object directly; a string value becomes the query
// when the request is application/graphql; anything else means the body
// contributes no parameters.
const PreparsedBodyKey = "gqlbind.body"

// OperationKey is the echo context key under which the handler records
// the requested operation type ("query", "mutation" or "subscription")
// once the document has parsed, for downstream middleware such as
// metrics instrumentation.
const OperationKey = "gqlbind.operation"

// maxBodyBytes caps the decompressed request body size.
const maxBodyBytes = 100 << 10

// Params are the GraphQL parameters resolved from one HTTP request.
// Query-string values win over body values. Raw forces a JSON response
// regardless of the Accept header.
type Params struct {
	Query         string
	Variables     map[string]interface{}
	OperationName string
	Raw           bool
}

// extractParams resolves the GraphQL parameters for one request from
// the query string and, when present, the request body.
func extractParams(c echo.Context) (*Params, error) {
	body, err := resolveBody(c)
	if err != nil {
		return nil, err
	}

	qs := c.QueryParams()
	p := &Params{}

	// a present query-string value is authoritative even when empty
	if qs.Has("query") {
		p.Query = qs.Get("query")
	} else if v, ok := body["query"].(string); ok {
		p.Query = v
	}

	var rawVars interface{}
	if qs.Has("variables") {
		rawVars = qs.Get("variables")
	} else {
		rawVars = body["variables"]
	}
	if p.Variables, err = coerceVariables(rawVars); err != nil {
		return nil, err
	}

	if qs.Has("operationName") {
		p.OperationName = qs.Get("operationName")
	} else if v, ok := body["operationName"].(string); ok {
		p.OperationName = v
	}

	// raw counts as set when the key is present, whatever its value
	_, inBody := body["raw"]
	p.Raw = qs.Has("raw") || inBody

	return p, nil
}

// coerceVariables accepts a JSON-encoded string or an already-structured
// map; anything else means no variables.
func coerceVariables(v interface{}) (map[string]interface{}, error) {
	switch vars := v.(type) {
	case string:
		if vars == "" {
			return nil, nil
		}
		out := map[string]interface{}{}
		if err := json.Unmarshal([]byte(vars), &out); err != nil {
			return nil, badRequest("variables are invalid JSON", err)
		}
		return out, nil
	case map[string]interface{}:
		return vars, nil
	default:
		return nil, nil
	}
}

// resolveBody produces the keyed body object for one request, honoring
// a pre-parsed body left by upstream middleware before touching the
// wire.
func resolveBody(c echo.Context) (map[string]interface{}, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	if pre := c.Get(PreparsedBodyKey); pre != nil {
		switch body := pre.(type) {
		case map[string]interface{}:
			return body, nil
		case string:
			if mt, _, _ := mime.ParseMediaType(contentType); mt == "application/graphql" {
				return map[string]interface{}{"query": body}, nil
			}
		}
		return nil, nil
	}

	if contentType == "" || c.Request().Body == nil {
		return nil, nil
	}

	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, badRequest("invalid content-type header", err)
	}

	switch mt {
	case "application/json", "application/x-www-form-urlencoded", "application/graphql":
	default:
		return nil, nil
	}

	raw, err := readBody(c.Request(), params["charset"])
	if err != nil {
		return nil, err
	}

	switch mt {
	case "application/graphql":
		return map[string]interface{}{"query": string(raw)}, nil
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, badRequest("POST body sent invalid form data", err)
		}
		body := make(map[string]interface{}, len(values))
		for k := range values {
			body[k] = values.Get(k)
		}
		return body, nil
	default: // application/json
		trimmed := strings.TrimLeft(string(raw), " \t\r\n")
		if !strings.HasPrefix(trimmed, "{") {
			return nil, badRequest("POST body sent invalid JSON", nil)
		}
		body := map[string]interface{}{}
		if err := json.Unmarshal([]byte(trimmed), &body); err != nil {
			return nil, badRequest("POST body sent invalid JSON", err)
		}
		return body, nil
	}
}

// readBody streams the request body through the declared
// content-encoding, refusing to buffer more than maxBodyBytes of
// decompressed payload, then decodes the declared charset. Unsupported
// encodings and charsets are rejected before any body bytes are read.
func readBody(r *http.Request, charset string) ([]byte, error) {
	charset = strings.ToLower(charset)
	switch charset {
	case "", "utf-8", "utf8", "utf-16le":
	default:
		return nil, unsupportedMediaType("unsupported charset " + strings.ToUpper(charset))
	}

	var reader io.Reader

	switch encoding := strings.ToLower(r.Header.Get("Content-Encoding")); encoding {
	case "", "identity":
		reader = r.Body
	case "gzip":
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, badRequest("invalid gzip body", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		zr, err := zlib.NewReader(r.Body)
		if err != nil {
			return nil, badRequest("invalid deflate body", err)
		}
		defer zr.Close()
		reader = zr
	default:
		return nil, unsupportedMediaType("unsupported content-encoding " + encoding)
	}

	raw, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes+1))
	if err != nil {
		return nil, badRequest("failed to read request body", err)
	}
	if len(raw) > maxBodyBytes {
		return nil, payloadTooLarge()
	}

	if charset == "utf-16le" {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return nil, badRequest("invalid utf-16le body", err)
		}
		raw = decoded
	}

	return raw, nil
}
