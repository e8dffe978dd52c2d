package layouts

import (
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Base is the HTML document every page renders into.
func Base(title string, content ...cmp.Node) cmp.Node {
	return g.Doctype(
		g.HTML(
			g.Lang("en"),
			g.Head(
				g.Meta(g.Charset("utf-8")),
				g.Meta(g.Name("viewport"), g.Content("width=device-width, initial-scale=1")),
				g.TitleEl(cmp.Text(CalculateTitle(title))),
				g.Link(g.Rel("stylesheet"), g.Href("/static/css/app.css")),
				g.Script(g.Src(htmxSrc), g.Defer()),
			),
			g.Body(
				g.Class("min-h-screen bg-gray-100"),
				cmp.Group(content),
			),
		),
	)
}
