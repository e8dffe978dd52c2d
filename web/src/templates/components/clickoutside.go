package components

import (
	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"
)

// ClickOutside renders a transparent layer that covers the page behind an
// open panel. Any click on it fetches closeURL and swaps the result into
// target, which removes the layer together with the panel. The layer only
// exists while the panel is rendered open, so nothing is left listening
// once it closes or the page is left.
//
// The panel must be stacked above the layer (z-50 vs z-40) so clicks inside
// it never reach the layer.
func ClickOutside(closeURL, target string) cmp.Node {
	return g.Div(
		g.Class("fixed inset-0 z-40"),
		cmp.Attr("data-click-outside", target),
		g.Aria("hidden", "true"),
		hx.Get(closeURL),
		hx.Trigger("click"),
		hx.Target(target),
		hx.Swap("outerHTML"),
	)
}
