package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/labstack/echo/v4"
)

// httpError is a transport-level failure carrying the status code the
// response must use and any headers it must propagate.
type httpError struct {
	status int
	header http.Header
	msg    string
	cause  error
}

func (e *httpError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

func badRequest(msg string, cause error) *httpError {
	return &httpError{status: http.StatusBadRequest, msg: msg, cause: cause}
}

func unsupportedMediaType(msg string) *httpError {
	return &httpError{status: http.StatusUnsupportedMediaType, msg: msg}
}

func payloadTooLarge() *httpError {
	return &httpError{
		status: http.StatusRequestEntityTooLarge,
		msg:    fmt.Sprintf("request body exceeded %d bytes", maxBodyBytes),
	}
}

func methodNotAllowed(allow, msg string) *httpError {
	return &httpError{
		status: http.StatusMethodNotAllowed,
		header: http.Header{"Allow": []string{allow}},
		msg:    msg,
	}
}

// resultError carries a pre-formatted engine error list with a forced
// status, e.g. syntax errors (400) or schema errors (500).
type resultError struct {
	status int
	errs   []gqlerrors.FormattedError
}

func (e *resultError) Error() string {
	if len(e.errs) == 0 {
		return http.StatusText(e.status)
	}
	return e.errs[0].Message
}

// isTransport reports whether err carries an explicit HTTP status of its
// own and therefore must not be reclassified by the pipeline.
func isTransport(err error) bool {
	var he *httpError
	var ee *echo.HTTPError
	return errors.As(err, &he) || errors.As(err, &ee)
}

// errorHeader returns headers the failure requires on the response, such
// as Allow on a 405.
func errorHeader(err error) http.Header {
	var he *httpError
	if errors.As(err, &he) {
		return he.header
	}
	return nil
}

// mapError normalizes any pipeline failure into a response status and a
// formatted error list. A status already recording a failure (>= 400)
// is never downgraded by a later, less specific classification.
func mapError(err error, status int) (int, []gqlerrors.FormattedError) {
	var (
		mapped int
		errs   []gqlerrors.FormattedError
	)

	var re *resultError
	var he *httpError
	var ee *echo.HTTPError

	switch {
	case errors.As(err, &re):
		mapped, errs = re.status, re.errs
	case errors.As(err, &he):
		mapped, errs = he.status, gqlerrors.FormatErrors(he)
	case errors.As(err, &ee):
		mapped = ee.Code
		errs = gqlerrors.FormatErrors(fmt.Errorf("%v", ee.Message))
	default:
		mapped, errs = http.StatusInternalServerError, gqlerrors.FormatErrors(err)
	}

	if status < http.StatusBadRequest {
		status = mapped
	}

	return status, errs
}
