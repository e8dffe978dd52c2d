package components

import (
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

const (
	LogoutDialogID  = "logout-dialog"
	LogoutDialogURL = "/dashboard/logout-dialog"
)

// LogoutDialog asks for confirmation before signing out. Closed, it renders
// only its empty slot. Cancel swaps the closed state back in; confirming
// posts to /auth/logout, which navigates away or replaces the page with an
// error, so the dialog is gone either way.
func LogoutDialog(open bool) cmp.Node {
	if !open {
		return g.Div(g.ID(LogoutDialogID))
	}

	return g.Div(
		g.ID(LogoutDialogID),
		g.Div(g.Class("fixed inset-0 z-40 bg-black/50")),
		g.Div(
			g.Class("fixed left-1/2 top-1/2 z-50 w-full max-w-md -translate-x-1/2 -translate-y-1/2 rounded-lg bg-white p-6 shadow-lg"),
			g.Role("alertdialog"),
			g.Aria("modal", "true"),
			g.Aria("labelledby", "logout-dialog-title"),
			g.H2(g.ID("logout-dialog-title"), g.Class("text-lg font-semibold"), cmp.Text("Are you sure you want to log out?")),
			g.P(g.Class("mt-2 text-sm text-gray-500"), cmp.Text("You will need to sign in again to access your dashboard.")),
			g.Div(
				g.Class("mt-6 flex justify-end gap-2"),
				g.Button(
					g.Type("button"),
					g.Class("btn btn-outline"),
					hx.Get(LogoutDialogURL+"?open=false"),
					hx.Target("#"+LogoutDialogID),
					hx.Swap("outerHTML"),
					cmp.Text("Cancel"),
				),
				g.Form(
					g.Action("/auth/logout"),
					g.Method("post"),
					hx.Post("/auth/logout"),
					hx.Target("#"+LogoutDialogID),
					hx.Swap("outerHTML"),
					g.Button(g.Type("submit"), g.Class("btn btn-destructive"), cmp.Text("Logout")),
				),
			),
		),
	)
}
