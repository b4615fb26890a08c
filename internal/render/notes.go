package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
)

// The default goldmark renderer drops raw HTML, so notes cannot inject markup.
var notesMarkdown = goldmark.New()

func renderNotes(source string) (template.HTML, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := notesMarkdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	// #nosec G203 -- goldmark output without the unsafe option.
	return template.HTML(strings.TrimRight(buf.String(), "\n")), nil
}
