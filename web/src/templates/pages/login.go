package pages

import (
	"github.com/nfrund/kaashub/internal/view/dto/auth"
	"github.com/nfrund/kaashub/web/src/templates/components"
	"github.com/nfrund/kaashub/web/src/templates/layouts"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

const LoginFormID = "login-form"

var providerTitle = cases.Title(language.English)

// LoginPage is the page served at "/".
func LoginPage(data auth.LoginData) cmp.Node {
	title := "Login"
	if data.SignUp {
		title = "Sign Up"
	}
	return layouts.Base(title,
		g.Div(
			g.Class("flex min-h-screen flex-col items-center justify-center p-6 md:p-10"),
			g.Div(
				g.Class("w-full max-w-sm md:max-w-3xl"),
				LoginForm(data),
			),
		),
	)
}

// LoginForm renders the login/signup card. Every auth POST from the form
// swaps this node, so it is always rendered with loading cleared.
func LoginForm(data auth.LoginData) cmp.Node {
	heading, sub, submit := "Welcome back", "Login to your Kaas account", "Login"
	switchText, switchLink := "Don't have an account?", "Sign up"
	mode := "login"
	if data.SignUp {
		heading, sub, submit = "Create an Account", "Sign up for a Kaas account", "Sign Up"
		switchText, switchLink = "Already have an account?", "Login"
		mode = "signup"
	}

	return g.Div(
		g.ID(LoginFormID),
		g.Class("flex flex-col gap-6"),
		g.Div(
			g.Class("card overflow-hidden rounded-xl bg-white shadow"),
			g.Form(
				g.Class("p-6 md:p-8"),
				g.Action("/auth/email"),
				g.Method("post"),
				hx.Post("/auth/email"),
				hx.Target("#"+LoginFormID),
				hx.Swap("outerHTML"),
				cmp.Attr("hx-disabled-elt", "find button"),
				g.Input(g.Type("hidden"), g.Name("mode"), g.Value(mode)),
				g.Div(
					g.Class("flex flex-col gap-6"),
					g.Div(
						g.Class("flex flex-col items-center text-center"),
						g.H1(g.Class("text-2xl font-bold"), cmp.Text(heading)),
						g.P(g.Class("text-balance text-gray-500"), cmp.Text(sub)),
					),
					cmp.If(data.Error != "",
						g.Div(g.Class("form-error text-center text-sm text-red-500"), g.Role("alert"), cmp.Text(data.Error)),
					),
					cmp.If(data.Message != "",
						g.Div(g.Class("form-message text-center text-sm text-green-600"), g.Role("status"), cmp.Text(data.Message)),
					),
					g.Div(
						g.Class("grid gap-3"),
						g.Label(g.For("email"), cmp.Text("Email")),
						g.Input(g.ID("email"), g.Name("email"), g.Type("email"), g.Class("input"),
							g.Placeholder("mikeanderson@gmail.com"), g.Value(data.Email), g.Required()),
					),
					g.Div(
						g.Class("grid gap-3"),
						g.Div(
							g.Class("flex items-center"),
							g.Label(g.For("password"), cmp.Text("Password")),
							g.A(g.Href("#"), g.Class("ml-auto text-sm underline-offset-2 hover:underline"), cmp.Text("Forgot your password?")),
						),
						g.Input(g.ID("password"), g.Name("password"), g.Type("password"), g.Class("input"),
							g.Value(data.Password), g.Required()),
					),
					g.Button(
						g.Type("submit"),
						g.Class("btn btn-primary w-full"),
						g.Span(g.Class("btn-label"), cmp.Text(submit)),
						g.Span(g.Class("htmx-indicator"), cmp.Text("Processing...")),
					),
					cmp.If(len(data.Providers) > 0, cmp.Group{
						g.Div(
							g.Class("divider relative text-center text-sm"),
							g.Span(g.Class("relative z-10 bg-white px-2 text-gray-500"), cmp.Text("Or continue with")),
						),
						g.Div(
							g.Class("grid grid-cols-2 gap-4"),
							cmp.Map(data.Providers, socialButton),
						),
					}),
					g.Div(
						g.Class("text-center text-sm"),
						cmp.Text(switchText+" "),
						g.Button(
							g.Type("submit"),
							g.Class("mode-toggle underline underline-offset-4"),
							cmp.Attr("formaction", "/auth/mode"),
							cmp.Attr("formnovalidate", ""),
							hx.Post("/auth/mode"),
							cmp.Text(switchLink),
						),
					),
				),
			),
		),
		g.Div(
			g.Class("text-balance text-center text-xs text-gray-500"),
			cmp.Text("By clicking continue, you agree to our "),
			g.A(g.Href("#"), g.Class("underline underline-offset-4"), cmp.Text("Terms of Service")),
			cmp.Text(" and "),
			g.A(g.Href("#"), g.Class("underline underline-offset-4"), cmp.Text("Privacy Policy")),
			cmp.Text("."),
		),
	)
}

func socialButton(provider string) cmp.Node {
	url := "/auth/oauth/" + provider
	return g.Button(
		g.Type("submit"),
		g.Class("btn btn-outline w-full"),
		g.Value(provider),
		cmp.Attr("formaction", url),
		cmp.Attr("formnovalidate", ""),
		hx.Post(url),
		components.ProviderIcon(provider),
		g.Span(g.Class("sr-only"), cmp.Text("Login with "+providerTitle.String(provider))),
	)
}
