package components

import (
	"strings"
	"testing"

	"github.com/nfrund/kaashub/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cmp "maragu.dev/gomponents"
)

func render(t *testing.T, n cmp.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestRadarChart(t *testing.T) {
	t.Run("plots the sample series", func(t *testing.T) {
		html := render(t, RadarChart(SampleRadarData, StudentA))

		// Math scores 120 of 150 on the top axis.
		assert.Contains(t, html, `points="150.00,54.00 `)
		assert.Contains(t, html, `stroke="#8884d8"`)
		assert.Contains(t, html, `fill-opacity="0.6"`)
		for _, p := range SampleRadarData {
			assert.Contains(t, html, ">"+p.Subject+"<")
		}
		assert.Equal(t, radarRings+1, strings.Count(html, "<polygon"))
	})

	t.Run("needs three axes", func(t *testing.T) {
		html := render(t, RadarChart(SampleRadarData[:2], StudentA))
		assert.Contains(t, html, "Not enough data")
		assert.NotContains(t, html, "<svg")
	})
}

func TestRadarVertex(t *testing.T) {
	x, y := radarVertex(0, 4, RadarFullMark)
	assert.InDelta(t, 150, x, 0.001)
	assert.InDelta(t, 30, y, 0.001)

	// Axes run clockwise, so the second of four points right.
	x, y = radarVertex(1, 4, RadarFullMark)
	assert.InDelta(t, 270, x, 0.001)
	assert.InDelta(t, 150, y, 0.001)
}

func TestClickOutside(t *testing.T) {
	html := render(t, ClickOutside("/dashboard/sidebar?open=false", "#sidebar"))

	assert.Contains(t, html, `hx-get="/dashboard/sidebar?open=false"`)
	assert.Contains(t, html, `hx-trigger="click"`)
	assert.Contains(t, html, `hx-target="#sidebar"`)
	assert.Contains(t, html, `hx-swap="outerHTML"`)
	assert.Contains(t, html, "fixed inset-0 z-40")
}

func TestSidebar(t *testing.T) {
	closed := render(t, Sidebar(false))
	assert.Contains(t, closed, `id="sidebar"`)
	assert.Contains(t, closed, `hx-get="/dashboard/sidebar?open=true"`)
	assert.Contains(t, closed, `aria-expanded="false"`)
	assert.NotContains(t, closed, "data-click-outside", "closed sidebar must not listen for outside clicks")
	assert.NotContains(t, closed, "sidebar-panel fixed")

	open := render(t, Sidebar(true))
	assert.Contains(t, open, `aria-expanded="true"`)
	assert.Contains(t, open, `data-click-outside="#sidebar"`)
	assert.Contains(t, open, `href="/profile"`)
	assert.Equal(t, 2, strings.Count(open, `hx-get="/dashboard/sidebar?open=false"`), "toggle and overlay both close")
}

func TestLogoutDialog(t *testing.T) {
	assert.Equal(t, `<div id="logout-dialog"></div>`, render(t, LogoutDialog(false)))

	open := render(t, LogoutDialog(true))
	assert.Contains(t, open, `role="alertdialog"`)
	assert.Contains(t, open, `hx-get="/dashboard/logout-dialog?open=false"`)
	assert.Contains(t, open, `hx-post="/auth/logout"`)
	assert.Contains(t, open, ">Cancel<")
}

func TestAvatar(t *testing.T) {
	withImage := render(t, Avatar("https://cdn.example.com/a.png", "Kaas Fan", "K", "h-8 w-8"))
	assert.Contains(t, withImage, `src="https://cdn.example.com/a.png"`)
	assert.NotContains(t, withImage, "avatar-fallback")

	fallback := render(t, Avatar("", "Kaas Fan", "K", "h-8 w-8"))
	assert.NotContains(t, fallback, "<img")
	assert.Contains(t, fallback, ">K<")
}

func TestProviderIcon(t *testing.T) {
	assert.Contains(t, render(t, ProviderIcon("google")), "<path")
	assert.Contains(t, render(t, ProviderIcon("facebook")), "<path")
	assert.Nil(t, ProviderIcon("github"))
}

func TestFlashes(t *testing.T) {
	assert.Nil(t, Flashes(view.FlashData{}))

	html := render(t, Flashes(view.FlashData{Success: []string{"Saved"}, Error: []string{"No session found"}}))
	assert.Contains(t, html, "flash-success")
	assert.Contains(t, html, ">Saved<")
	assert.Contains(t, html, "No session found")
}
