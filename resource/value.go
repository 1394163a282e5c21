package resource

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/resmerge/reserrors"
)

const xmlNamespaceURL = "http://www.w3.org/XML/1998/namespace"

// elements that carry no resource
var ignoredElements = map[string]bool{
	"eat-comment": true,
	"skip":        true,
}

// Attr is one attribute of a value element, with its prefix folded into Name.
type Attr struct {
	Name  string `yaml:"name"  json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Value is the parsed content of one entry of a value document. The inner
// XML is kept verbatim; only the element and its attributes are decoded.
type Value struct {
	Element    string
	Attrs      []Attr
	Inner      string
	Namespaces map[string]string // prefix -> URI, only those the entry uses
}

type rawElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

type resourcesDocument struct {
	XMLName xml.Name
	Attrs   []xml.Attr   `xml:",any,attr"`
	Items   []rawElement `xml:",any"`
}

// Attr returns the value of the named attribute, or "".
func (v *Value) Attr(name string) string {
	for _, a := range v.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Name returns the resource name declared by the entry.
func (v *Value) Name() string {
	return v.Attr("name")
}

// Type returns the resource type declared by the entry.
func (v *Value) Type() ResourceType {
	switch v.Element {
	case "item":
		return ResourceType(v.Attr("type"))
	case "string-array", "integer-array", "array":
		return "array"
	default:
		return ResourceType(v.Element)
	}
}

// XML returns the serialized element. It is the payload stored in snapshots
// and the text written into merged value documents.
func (v *Value) XML() string {
	return v.xml(nil)
}

// xml serializes the element with extra namespace declarations on it.
func (v *Value) xml(declare map[string]string) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(v.Element)
	for _, prefix := range slices.Sorted(maps.Keys(declare)) {
		b.WriteString(" xmlns:")
		b.WriteString(prefix)
		b.WriteString(`="`)
		_ = xml.EscapeText(&b, []byte(declare[prefix]))
		b.WriteString(`"`)
	}
	for _, a := range v.Attrs {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString(`="`)
		_ = xml.EscapeText(&b, []byte(a.Value))
		b.WriteString(`"`)
	}
	if v.Inner == "" {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteString(">")
	b.WriteString(v.Inner)
	b.WriteString("</")
	b.WriteString(v.Element)
	b.WriteString(">")
	return b.String()
}

// Equal reports whether two values serialize identically.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.XML() == other.XML() && maps.Equal(v.Namespaces, other.Namespaces)
}

// ParseValue restores a Value from its serialized element and the namespace
// declarations it depends on.
func ParseValue(text string, namespaces map[string]string) (*Value, error) {
	var el rawElement
	if err := xml.Unmarshal([]byte(text), &el); err != nil {
		return nil, fmt.Errorf("resource: invalid value element: %w", err)
	}
	scope, attrs := entryScope(namespaces, el.Attrs)
	v := &Value{
		Element: el.XMLName.Local,
		Attrs:   convertAttrs(attrs, prefixesFor(scope)),
		Inner:   el.Inner,
	}
	if len(scope) > 0 {
		v.Namespaces = scope
	}
	return v, nil
}

// ParseValuesDocument decodes a <resources> document into its entries in
// document order. path is only used for error reporting.
func ParseValuesDocument(path string, data []byte) ([]*Value, error) {
	var doc resourcesDocument
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		perr := &reserrors.ParseError{Path: path, Message: "malformed value document", Cause: err}
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			perr.Line = syntaxErr.Line
		}
		return nil, perr
	}
	if doc.XMLName.Local != "resources" {
		return nil, &reserrors.ParseError{
			Path:    path,
			Message: fmt.Sprintf("root element is <%s>, expected <resources>", doc.XMLName.Local),
		}
	}

	namespaces := make(map[string]string)
	for _, a := range doc.Attrs {
		if a.Name.Space == "xmlns" {
			namespaces[a.Name.Local] = a.Value
		}
	}

	values := make([]*Value, 0, len(doc.Items))
	for _, item := range doc.Items {
		if ignoredElements[item.XMLName.Local] {
			continue
		}
		scope, attrs := entryScope(namespaces, item.Attrs)
		v := &Value{
			Element: item.XMLName.Local,
			Attrs:   convertAttrs(attrs, prefixesFor(scope)),
			Inner:   item.Inner,
		}
		if v.Name() == "" {
			return nil, &reserrors.ParseError{
				Path:    path,
				Message: fmt.Sprintf("<%s> element has no name attribute", v.Element),
			}
		}
		if v.Type() == "" {
			return nil, &reserrors.ParseError{
				Path:    path,
				Message: fmt.Sprintf("<item name=%q> has no type attribute", v.Name()),
			}
		}
		v.Namespaces = usedNamespaces(scope, v)
		values = append(values, v)
	}
	return values, nil
}

// WriteValuesDocument writes values, in the given order, as one <resources>
// document. Namespace declarations go on the root; a prefix that an entry
// binds to a different URI than the root does is redeclared on that entry.
func WriteValuesDocument(w io.Writer, values []*Value) error {
	namespaces := make(map[string]string)
	for _, v := range values {
		for _, prefix := range slices.Sorted(maps.Keys(v.Namespaces)) {
			if _, ok := namespaces[prefix]; !ok {
				namespaces[prefix] = v.Namespaces[prefix]
			}
		}
	}

	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(xml.Header)
	_, _ = bw.WriteString("<resources")
	for _, prefix := range slices.Sorted(maps.Keys(namespaces)) {
		_, _ = fmt.Fprintf(bw, " xmlns:%s=%q", prefix, namespaces[prefix])
	}
	_, _ = bw.WriteString(">\n")
	for _, v := range values {
		var local map[string]string
		for prefix, uri := range v.Namespaces {
			if namespaces[prefix] != uri {
				if local == nil {
					local = make(map[string]string)
				}
				local[prefix] = uri
			}
		}
		_, _ = bw.WriteString("    ")
		_, _ = bw.WriteString(v.xml(local))
		_, _ = bw.WriteString("\n")
	}
	_, _ = bw.WriteString("</resources>\n")
	return bw.Flush()
}

func prefixesFor(namespaces map[string]string) map[string]string {
	prefixes := map[string]string{xmlNamespaceURL: "xml"}
	for prefix, uri := range namespaces {
		prefixes[uri] = prefix
	}
	return prefixes
}

// entryScope returns the namespace bindings in effect on an entry, its own
// xmlns declarations overriding inherited ones, and its remaining attributes.
func entryScope(inherited map[string]string, attrs []xml.Attr) (map[string]string, []xml.Attr) {
	scope := maps.Clone(inherited)
	rest := attrs[:0:0]
	for _, a := range attrs {
		if a.Name.Space == "xmlns" {
			if scope == nil {
				scope = make(map[string]string)
			}
			scope[a.Name.Local] = a.Value
			continue
		}
		rest = append(rest, a)
	}
	return scope, rest
}

func convertAttrs(attrs []xml.Attr, prefixes map[string]string) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		name := a.Name.Local
		switch {
		case a.Name.Space == "":
		case a.Name.Space == "xmlns":
			name = "xmlns:" + a.Name.Local
		case prefixes[a.Name.Space] != "":
			name = prefixes[a.Name.Space] + ":" + a.Name.Local
		default:
			name = a.Name.Space + ":" + a.Name.Local
		}
		out = append(out, Attr{Name: name, Value: a.Value})
	}
	return out
}

func usedNamespaces(namespaces map[string]string, v *Value) map[string]string {
	var used map[string]string
	for prefix, uri := range namespaces {
		marker := prefix + ":"
		inUse := strings.Contains(v.Inner, marker)
		for _, a := range v.Attrs {
			if strings.HasPrefix(a.Name, marker) {
				inUse = true
			}
		}
		if inUse {
			if used == nil {
				used = make(map[string]string)
			}
			used[prefix] = uri
		}
	}
	return used
}
