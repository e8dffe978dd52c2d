package components

import (
	cmp "maragu.dev/gomponents"
)

// ProviderIcon returns the logo of an OAuth provider, or nil.
func ProviderIcon(provider string) cmp.Node {
	var d string
	switch provider {
	case "google":
		d = "M12.48 10.92v3.28h7.84c-.24 1.84-.853 3.187-1.787 4.133-1.147 1.147-2.933 2.4-6.053 2.4-4.827 0-8.6-3.893-8.6-8.72s3.773-8.72 8.6-8.72c2.6 0 4.507 1.027 5.907 2.347l2.307-2.307C18.747 1.44 16.133 0 12.48 0 5.867 0 .307 5.387.307 12s5.56 12 12.173 12c3.573 0 6.267-1.173 8.373-3.36 2.16-2.16 2.84-5.213 2.84-7.667 0-.76-.053-1.467-.173-2.053H12.48z"
	case "facebook":
		d = "M22.675 0h-21.35C.595 0 0 .595 0 1.326v21.348C0 23.405.595 24 1.326 24h11.495v-9.294H9.692V11.01h3.129V8.414c0-3.1 1.893-4.788 4.659-4.788 1.325 0 2.463.099 2.796.143v3.24h-1.918c-1.504 0-1.796.715-1.796 1.763v2.31h3.59l-.467 3.696h-3.123V24h6.116C23.405 24 24 23.405 24 22.674V1.326C24 .595 23.405 0 22.675 0z"
	default:
		return nil
	}
	return svg("svg",
		cmp.Attr("xmlns", "http://www.w3.org/2000/svg"),
		cmp.Attr("viewBox", "0 0 24 24"),
		cmp.Attr("class", "mr-2 h-5 w-5"),
		svg("path", cmp.Attr("d", d), cmp.Attr("fill", "currentColor")),
	)
}
