package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/munnerz/goautoneg"
)

// canDisplayGraphiQL reports whether the client prefers the in-browser
// IDE over a JSON response. JSON is listed first among the candidates so
// HTML wins only when the Accept header strictly prefers it; the raw
// parameter always forces JSON.
func canDisplayGraphiQL(c echo.Context, p *Params) bool {
	if p.Raw {
		return false
	}

	accept := c.Request().Header.Get("Accept")

	return goautoneg.Negotiate(accept, []string{echo.MIMEApplicationJSON, echo.MIMETextHTML}) == echo.MIMETextHTML
}
