package components

import (
	"github.com/nfrund/kaashub/internal/view"
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// Flashes renders queued one-time messages.
func Flashes(data view.FlashData) cmp.Node {
	if len(data.Success) == 0 && len(data.Error) == 0 {
		return nil
	}
	return g.Div(
		g.Class("flashes space-y-2"),
		cmp.Map(data.Success, func(msg string) cmp.Node {
			return g.Div(g.Class("flash flash-success rounded bg-green-50 p-3 text-sm text-green-700"), g.Role("status"), cmp.Text(msg))
		}),
		cmp.Map(data.Error, func(msg string) cmp.Node {
			return g.Div(g.Class("flash flash-error rounded bg-red-50 p-3 text-sm text-red-600"), g.Role("alert"), cmp.Text(msg))
		}),
	)
}
