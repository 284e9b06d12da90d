package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/depotbot/internal/portfolio"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestPreview_Page(t *testing.T) {
	pages := []portfolio.Page{{
		Title:     "Depot",
		TotalText: "300,00 €",
		Color:     0x2ECC71,
		Fields: []portfolio.Field{
			{Name: `Müller "AG" <b>`, Value: "200,00 €", Change: "-3,00 %", Direction: portfolio.Down},
		},
	}}

	html := render(t, Preview("Depot", pages))

	assert.Contains(t, html, "<title>Depot</title>")
	assert.Contains(t, html, `data-color="#2ecc71"`)
	assert.Contains(t, html, `data-direction="down"`)
	assert.Contains(t, html, "Müller &#34;AG&#34; &lt;b&gt;")
	assert.Contains(t, html, "<strong>Gesamtwert:</strong> 300,00 €")
	assert.NotContains(t, html, "No data available")
}

func TestPreview_Empty(t *testing.T) {
	assert.Contains(t, render(t, Preview("Depot", nil)), "No data available")
}

func TestErrorAlert(t *testing.T) {
	html := render(t, ErrorAlert("Sheet <gone>", "Republish it", "SRC002"))

	assert.Contains(t, html, "Sheet &lt;gone&gt;")
	assert.Contains(t, html, "Republish it")
	assert.Contains(t, html, "Code: SRC002")
}
