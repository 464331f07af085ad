package views

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// PreviewLimit - сколько символов содержимого попадает в превью.
const PreviewLimit = 280

// markdown без html.WithUnsafe: сырой HTML из заметки выбрасывается, опасные ссылки не выводятся.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Preview отрисовывает начало содержимого заметки как Markdown.
func Preview(content string) template.HTML {
	runes := []rune(content)
	if len(runes) > PreviewLimit {
		content = string(runes[:PreviewLimit]) + "…"
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content)) //nolint:gosec
	}
	return template.HTML(buf.String()) //nolint:gosec
}
