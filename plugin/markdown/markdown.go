// Package markdown renders untrusted markdown into HTML that is safe to embed
// in a page. Memo bodies and generated answers go through the same pipeline.
package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to sanitized HTML. It is safe for concurrent use.
type Renderer struct {
	md       goldmark.Markdown
	sanitize *bluemonday.Policy
}

// NewRenderer compiles policy into a sanitizer. Raw HTML in the markdown is
// handed to the sanitizer rather than escaped, so disallowed tags are removed
// while their text survives.
func NewRenderer(policy Policy) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Renderer{
		md:       md,
		sanitize: compile(policy),
	}
}

func compile(policy Policy) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(policy.Elements()...)
	attributes := policy.Attributes()
	for _, element := range policy.sortedElementsWithAttributes() {
		p.AllowAttrs(attributes[element]...).OnElements(element)
	}
	if global := policy.GlobalAttributes(); len(global) > 0 {
		p.AllowAttrs(global...).Globally()
	}
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes(policy.URLSchemes()...)
	return p
}

// Render returns the sanitized HTML for text. Conversion failures fall back
// to sanitizing the raw text.
func (r *Renderer) Render(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return r.sanitize.Sanitize(text)
	}
	return r.sanitize.Sanitize(buf.String())
}
