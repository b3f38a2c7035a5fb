package markdown

import (
	"sort"
)

// Policy is the allow-list applied to rendered HTML. It is built once and
// never mutated; accessors hand out copies.
type Policy struct {
	elements   []string
	attributes map[string][]string
	global     []string
	schemes    []string
}

// NewPolicy copies its arguments into a read-only Policy. attributes is keyed
// by element name.
func NewPolicy(elements []string, attributes map[string][]string, global []string, schemes []string) Policy {
	attrs := make(map[string][]string, len(attributes))
	for element, names := range attributes {
		attrs[element] = append([]string(nil), names...)
	}
	return Policy{
		elements:   append([]string(nil), elements...),
		attributes: attrs,
		global:     append([]string(nil), global...),
		schemes:    append([]string(nil), schemes...),
	}
}

// DefaultPolicy allows structural and formatting markup, links and images
// over http(s) only, and the class attribute on every element.
func DefaultPolicy() Policy {
	return NewPolicy(
		[]string{
			"a", "abbr", "acronym", "b", "blockquote", "code", "em", "i", "li", "ol", "strong", "ul",
			"p", "pre", "hr", "br",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"table", "thead", "tbody", "tr", "th", "td",
			"img",
		},
		map[string][]string{
			"a":       {"href", "title", "target", "rel"},
			"img":     {"src", "alt", "title", "width", "height"},
			"abbr":    {"title"},
			"acronym": {"title"},
		},
		[]string{"class"},
		[]string{"http", "https"},
	)
}

func (p Policy) Elements() []string {
	return append([]string(nil), p.elements...)
}

// Attributes returns the attribute names allowed on each element.
func (p Policy) Attributes() map[string][]string {
	attrs := make(map[string][]string, len(p.attributes))
	for element, names := range p.attributes {
		attrs[element] = append([]string(nil), names...)
	}
	return attrs
}

func (p Policy) GlobalAttributes() []string {
	return append([]string(nil), p.global...)
}

func (p Policy) URLSchemes() []string {
	return append([]string(nil), p.schemes...)
}

func (p Policy) sortedElementsWithAttributes() []string {
	elements := make([]string, 0, len(p.attributes))
	for element := range p.attributes {
		elements = append(elements, element)
	}
	sort.Strings(elements)
	return elements
}
