package pages

import (
	"github.com/nfrund/kaashub/internal/view/dto/profile"
	"github.com/nfrund/kaashub/web/src/templates/components"
	"github.com/nfrund/kaashub/web/src/templates/layouts"
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

const ProfileFormID = "profile-form"

func ProfilePage(data profile.FormData) cmp.Node {
	return layouts.Base("Profile",
		g.Div(
			g.Class("mx-auto mt-8 max-w-xl px-4"),
			g.A(g.Href("/dashboard"), g.Class("text-sm text-gray-500 hover:underline"), cmp.Text("Back to dashboard")),
			ProfileForm(data),
		),
	)
}

// ProfileForm is the editor card. Uploading an avatar and saving both swap
// it; the uploaded URL lives only in the hidden avatar_url field until saved.
func ProfileForm(data profile.FormData) cmp.Node {
	return g.Form(
		g.ID(ProfileFormID),
		g.Class("card mt-4 space-y-4 rounded-xl bg-white p-6 shadow"),
		g.Action("/profile"),
		g.Method("post"),
		hx.Post("/profile"),
		hx.Target("this"),
		hx.Swap("outerHTML"),
		g.H1(g.Class("text-xl font-semibold"), cmp.Text("Edit Profile")),
		g.Input(g.Type("hidden"), g.Name("avatar_url"), g.Value(data.AvatarURL)),
		g.Div(
			g.Class("flex flex-col items-center gap-4"),
			components.Avatar(data.DisplayAvatar, "User avatar", data.Initial, "h-24 w-24"),
			g.Input(
				g.ID("avatar-file"),
				g.Name("avatar"),
				g.Type("file"),
				g.Accept("image/*"),
				g.Class("hidden"),
				hx.Post("/profile/avatar"),
				hx.Trigger("change"),
				cmp.Attr("hx-encoding", "multipart/form-data"),
				hx.Include("closest form"),
				hx.Target("#"+ProfileFormID),
			),
			g.Label(g.For("avatar-file"), g.Class("btn btn-outline cursor-pointer"), cmp.Text("Upload New Avatar")),
		),
		g.Div(
			g.Label(g.For("email"), cmp.Text("Email (read-only)")),
			g.Input(g.ID("email"), g.Class("input mt-2"), g.Value(data.Email), g.Disabled()),
		),
		g.Div(
			g.Label(g.For("fullName"), cmp.Text("Full Name")),
			g.Input(g.ID("fullName"), g.Name("full_name"), g.Class("input mt-2"),
				g.Value(data.FullName), g.Placeholder("Enter your full name")),
		),
		g.Div(
			g.Class("flex gap-2"),
			g.Button(g.Type("submit"), g.Class("btn btn-primary"), cmp.Text("Save")),
			g.P(g.Class("htmx-indicator mt-2 text-sm text-gray-500"), cmp.Text("Saving...")),
			cmp.If(data.Status != "",
				g.P(g.Class("status status-"+data.StatusKind+" mt-2 text-sm"), g.Role("status"), cmp.Text(data.Status)),
			),
		),
	)
}
