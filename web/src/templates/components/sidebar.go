package components

import (
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

const (
	SidebarID  = "sidebar"
	SidebarURL = "/dashboard/sidebar"
)

// Sidebar renders the dashboard's collapsible navigation. The toggle button
// swaps in the opposite state; while open, a ClickOutside layer closes it.
func Sidebar(open bool) cmp.Node {
	next := "true"
	label := "Open menu"
	if open {
		next = "false"
		label = "Close menu"
	}

	return g.Div(
		g.ID(SidebarID),
		g.Button(
			g.Type("button"),
			g.Class("sidebar-toggle relative z-50 rounded-md p-2 hover:bg-gray-100"),
			g.Aria("expanded", boolString(open)),
			g.Aria("controls", "sidebar-panel"),
			hx.Get(SidebarURL+"?open="+next),
			hx.Target("#"+SidebarID),
			hx.Swap("outerHTML"),
			g.Span(g.Class("sr-only"), cmp.Text(label)),
			menuIcon(),
		),
		cmp.If(open, cmp.Group{
			ClickOutside(SidebarURL+"?open=false", "#"+SidebarID),
			g.Aside(
				g.ID("sidebar-panel"),
				g.Class("sidebar-panel fixed inset-y-0 left-0 z-50 w-64 bg-white p-6 shadow-lg"),
				g.H2(g.Class("mb-6 text-lg font-semibold"), cmp.Text("KaasHub")),
				g.Nav(
					g.Ul(
						g.Class("space-y-2"),
						g.Li(g.A(g.Class("block rounded px-3 py-2 hover:bg-gray-100"), g.Href("/dashboard"), cmp.Text("Dashboard"))),
						g.Li(g.A(g.Class("block rounded px-3 py-2 hover:bg-gray-100"), g.Href("/profile"), cmp.Text("Profile"))),
						g.Li(g.Button(
							g.Type("button"),
							g.Class("block w-full rounded px-3 py-2 text-left hover:bg-gray-100"),
							hx.Get(LogoutDialogURL+"?open=true"),
							hx.Target("#"+LogoutDialogID),
							hx.Swap("outerHTML"),
							cmp.Text("Logout"),
						)),
					),
				),
			),
		}),
	)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func menuIcon() cmp.Node {
	return svg("svg",
		cmp.Attr("xmlns", "http://www.w3.org/2000/svg"),
		cmp.Attr("viewBox", "0 0 24 24"),
		cmp.Attr("fill", "none"),
		cmp.Attr("stroke", "currentColor"),
		cmp.Attr("stroke-width", "2"),
		cmp.Attr("class", "h-6 w-6"),
		svg("path", cmp.Attr("d", "M4 6h16M4 12h16M4 18h16")),
	)
}
