package notify

import (
	"bytes"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/registry/std"
	sproutstrings "github.com/go-sprout/sprout/registry/strings"

	"github.com/AntoineGS/tidyfiles/internal/catalog"
)

// DefaultTitle heads every download confirmation.
const DefaultTitle = "Download requested"

// DefaultMessage is the download confirmation template.
const DefaultMessage = "Download requested for {{ len .Files }} file(s):\n" +
	"{{ range .Files }}{{ .Device }}: {{ .Path }}\n{{ end }}"

// MessageData is the data a message template is executed with.
type MessageData struct {
	RequestID string
	Files     []catalog.File
}

// Formatter renders download confirmations from a text/template. Templates
// may use the sprout std and strings functions.
type Formatter struct {
	tmpl *template.Template
}

func funcs(logger *slog.Logger) template.FuncMap {
	handler := sprout.New(sprout.WithLogger(logger))
	if err := handler.AddRegistries(std.NewRegistry(), sproutstrings.NewRegistry()); err != nil {
		logger.Warn("loading template functions", slog.String("error", err.Error()))
	}

	return template.FuncMap(handler.Build())
}

// NewFormatter parses text as the message template. An empty or invalid
// template falls back to DefaultMessage with a warning.
func NewFormatter(text string, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}

	if text == "" {
		text = DefaultMessage
	}

	fm := funcs(logger)

	tmpl, err := template.New("download").Funcs(fm).Parse(text)
	if err != nil {
		logger.Warn("invalid download message template, using default",
			slog.String("error", err.Error()))
		tmpl = template.Must(template.New("download").Funcs(fm).Parse(DefaultMessage))
	}

	return &Formatter{tmpl: tmpl}
}

// Format renders the confirmation for the given files.
func (f *Formatter) Format(data MessageData) (string, error) {
	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering download message: %w", err)
	}

	return buf.String(), nil
}
