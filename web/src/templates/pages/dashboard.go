package pages

import (
	"github.com/nfrund/kaashub/internal/profile"
	"github.com/nfrund/kaashub/web/src/templates/components"
	"github.com/nfrund/kaashub/web/src/templates/layouts"
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

// DashboardID wraps everything a failed logout replaces.
const DashboardID = "dashboard"

// Dashboard shows the signed-in user's greeting, menus and the sample chart.
func Dashboard(p profile.View) cmp.Node {
	name := p.DisplayName()

	return layouts.Base("Dashboard",
		g.Div(
			g.ID(DashboardID),
			g.Class("min-h-screen bg-gray-100"),
			g.Header(
				g.Class("bg-white shadow-sm"),
				g.Div(
					g.Class("mx-auto flex max-w-7xl items-center justify-between px-4 py-4 sm:px-6 lg:px-8"),
					g.Div(
						g.Class("flex items-center gap-2"),
						components.Sidebar(false),
						g.H1(g.Class("text-2xl font-bold text-gray-900"), cmp.Text("KaasHub")),
					),
					accountMenu(p, name),
				),
			),
			g.Main(
				g.Class("mx-auto max-w-7xl px-4 py-8 sm:px-6 lg:px-8"),
				g.Div(
					g.Class("card rounded-xl bg-white p-6 shadow"),
					g.H2(g.Class("text-xl font-semibold"), cmp.Textf("Welcome, %s!", name)),
					g.P(
						g.Class("mt-4 text-gray-600"),
						cmp.Text("This is your Kaas dashboard. You’re logged in with the email: "),
						g.Span(g.Class("font-medium"), cmp.Text(p.Email)),
						cmp.Text("."),
					),
					g.Div(
						g.Class("mt-6 flex flex-col gap-4 sm:flex-row"),
						g.A(g.Href("/profile"), g.Class("btn btn-outline"), cmp.Text("Edit Profile")),
						logoutButton("btn btn-destructive"),
					),
				),
				g.Div(
					g.Class("card mt-8 rounded-xl bg-white p-6 shadow"),
					g.H2(g.Class("mb-4 text-lg font-semibold"), cmp.Text("Skills overview")),
					components.RadarChart(components.SampleRadarData, components.StudentA),
				),
			),
			components.LogoutDialog(false),
		),
	)
}

func accountMenu(p profile.View, name string) cmp.Node {
	return cmp.El("details",
		g.Class("account-menu relative"),
		cmp.El("summary",
			g.Class("flex cursor-pointer list-none items-center gap-2 rounded-md px-3 py-2 hover:bg-gray-100"),
			components.Avatar(p.EffectiveAvatar(), name, p.Initial(), "h-8 w-8"),
			g.Span(g.Class("hidden sm:inline"), cmp.Text(name)),
		),
		g.Div(
			g.Class("absolute right-0 z-30 mt-2 w-48 rounded-md bg-white py-1 shadow-lg"),
			g.Div(g.Class("px-3 py-2 text-sm font-semibold"), cmp.Text("My Account")),
			g.Hr(),
			g.A(g.Href("/profile"), g.Class("block px-3 py-2 text-sm hover:bg-gray-100"), cmp.Text("Profile")),
			logoutButton("block w-full px-3 py-2 text-left text-sm hover:bg-gray-100"),
		),
	)
}

func logoutButton(class string) cmp.Node {
	return g.Button(
		g.Type("button"),
		g.Class(class),
		hx.Get(components.LogoutDialogURL+"?open=true"),
		hx.Target("#"+components.LogoutDialogID),
		hx.Swap("outerHTML"),
		cmp.Text("Logout"),
	)
}
