// Package web serves the file table page as server-rendered HTML at /.
package web

import (
	"embed"
	"fmt"
	"io"

	"github.com/google/safehtml/template"

	"github.com/AntoineGS/tidyfiles/internal/notify"
	"github.com/AntoineGS/tidyfiles/internal/table"
)

//go:embed templates/*
var templateFS embed.FS

// PageView is the data the page template renders.
type PageView struct {
	Alert    *notify.Notification
	Title    string
	Error    string
	Controls table.ControlsView
	Table    table.View[string]
	// Refresh asks the browser to poll while a fetch is in flight.
	Refresh bool
}

// Renderer renders pages and table fragments.
type Renderer struct {
	page *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	page, err := template.New("page.html").ParseFS(trustedFS, "templates/page.html", "templates/table.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}

	return &Renderer{page: page}, nil
}

// Render writes the full page.
func (r *Renderer) Render(w io.Writer, v PageView) error {
	return r.page.Execute(w, v)
}

// RenderTable writes only the table fragment.
func (r *Renderer) RenderTable(w io.Writer, v table.View[string]) error {
	return r.page.ExecuteTemplate(w, "table", v)
}
