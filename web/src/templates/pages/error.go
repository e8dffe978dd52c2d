package pages

import (
	"github.com/nfrund/kaashub/web/src/templates/layouts"
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// ErrorTakeover replaces a whole view with an error message.
func ErrorTakeover(message string) cmp.Node {
	return g.Div(
		g.ID(DashboardID),
		g.Class("error-takeover flex min-h-screen items-center justify-center text-red-500"),
		g.Role("alert"),
		cmp.Text(message),
	)
}

func ErrorPage(title, message string) cmp.Node {
	return layouts.Base(title, ErrorTakeover(message))
}
