package handler

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/labstack/echo/v4"
)

// response is the JSON envelope written for non-IDE outcomes. Marshaling
// keeps data before errors before extensions and keeps an explicit null
// data field once execution has produced one.
type response struct {
	data       interface{}
	hasData    bool
	errors     []gqlerrors.FormattedError
	extensions map[string]interface{}
}

func (r *response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if r.hasData {
		buf.WriteString(`"data":`)
		b, err := json.Marshal(r.data)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}

	if len(r.errors) > 0 {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"errors":`)
		b, err := json.Marshal(r.errors)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}

	if len(r.extensions) > 0 {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"extensions":`)
		b, err := json.Marshal(r.extensions)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeResult serializes the envelope: compactly through echo's native
// JSON responder, or pretty-printed through the manual header-setting
// path. Both paths marshal through the same MarshalJSON, so they agree
// byte-for-byte up to whitespace.
func writeResult(c echo.Context, cfg *Config, status int, resp *response) error {
	if cfg != nil && cfg.FormatErrorFn != nil {
		for i, e := range resp.errors {
			resp.errors[i] = cfg.FormatErrorFn(e)
		}
	}

	if cfg == nil || !cfg.Pretty {
		return c.JSON(status, resp)
	}

	compact, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(buf.Len()))
	return c.Blob(status, echo.MIMEApplicationJSONCharsetUTF8, buf.Bytes())
}
