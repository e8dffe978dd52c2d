package components

import (
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// Avatar shows src when set and the initial otherwise. size is a tailwind
// size class pair such as "h-8 w-8".
func Avatar(src, alt, initial, size string) cmp.Node {
	return g.Span(
		g.Class("avatar relative flex shrink-0 overflow-hidden rounded-full bg-gray-200 "+size),
		cmp.If(src != "",
			g.Img(g.Class("aspect-square h-full w-full object-cover"), g.Src(src), g.Alt(alt)),
		),
		cmp.If(src == "",
			g.Span(g.Class("avatar-fallback flex h-full w-full items-center justify-center font-medium"), cmp.Text(initial)),
		),
	)
}
