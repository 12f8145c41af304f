package xmlnode

import (
	"strings"

	"github.com/beevik/etree"
)

// etreeElement adapts a *etree.Element to the Element interface. This is
// the repository's one concrete, out-of-core-scope piece: everything
// else in pkg/xmldiff and pkg/xmlmerge is written against Element and
// never imports etree directly.
type etreeElement struct {
	e *etree.Element
}

// Wrap adapts a parsed etree element (typically Document.Root()) into an
// Element the diff/merge engines can consume.
func Wrap(e *etree.Element) Element {
	if e == nil {
		return nil
	}
	return etreeElement{e: e}
}

// ParseDocument parses XML bytes into an Element via etree, the DOM
// library this repository uses for the "external collaborator" XML
// parsing step (spec §1).
func ParseDocument(data []byte) (Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	return Wrap(doc.Root()), nil
}

// Serialize renders e back to XML bytes via etree, with indentation.
func Serialize(e Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(unwrap(e).Copy())
	doc.Indent(2)
	return doc.WriteToBytes()
}

func unwrap(e Element) *etree.Element {
	if e == nil {
		return nil
	}
	return e.(etreeElement).e
}

func (n etreeElement) LocalName() string { return n.e.Tag }
func (n etreeElement) Prefix() string    { return n.e.Space }

func (n etreeElement) NamespaceURI() string {
	return n.e.NamespaceURI()
}

func (n etreeElement) FullName(mode NamespaceMode) string {
	switch mode {
	case Strict, IgnorePrefix:
		if uri := n.NamespaceURI(); uri != "" {
			return "{" + uri + "}" + n.e.Tag
		}
		return n.e.Tag
	default: // IgnoreNamespace
		return n.e.Tag
	}
}

func (n etreeElement) Attributes() []Attribute {
	attrs := n.e.Attr
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, Attribute{
			Space: a.Space,
			URI:   attrURI(n.e, a),
			Name:  a.Key,
			Value: a.Value,
		})
	}
	return out
}

// attrURI resolves an attribute's namespace URI from the owning
// element's in-scope namespace declarations. Unprefixed attributes have
// no namespace per the XML namespaces spec, regardless of any default
// xmlns on the element.
func attrURI(owner *etree.Element, a etree.Attr) string {
	if a.Space == "" || a.Space == "xmlns" {
		return ""
	}
	return resolvePrefix(owner, a.Space)
}

func resolvePrefix(e *etree.Element, prefix string) string {
	for cur := e; cur != nil; cur = cur.Parent() {
		for _, a := range cur.Attr {
			if a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

func (n etreeElement) ChildElements() []Element {
	kids := n.e.ChildElements()
	out := make([]Element, 0, len(kids))
	for _, k := range kids {
		out = append(out, etreeElement{e: k})
	}
	return out
}

func (n etreeElement) IsLeaf() bool {
	return len(n.e.ChildElements()) == 0
}

func (n etreeElement) Text() string {
	var b strings.Builder
	for _, tok := range n.e.Child {
		if cd, ok := tok.(*etree.CharData); ok && !cd.IsCDATA() {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

func (n etreeElement) Comments() []Comment {
	var out []Comment
	for _, tok := range n.e.Child {
		if c, ok := tok.(*etree.Comment); ok {
			out = append(out, Comment{Data: c.Data})
		}
	}
	return out
}

func (n etreeElement) CDataSections() []CData {
	var out []CData
	for _, tok := range n.e.Child {
		if cd, ok := tok.(*etree.CharData); ok && cd.IsCDATA() {
			out = append(out, CData{Data: cd.Data})
		}
	}
	return out
}

func (n etreeElement) ProcInsts() []ProcInst {
	var out []ProcInst
	for _, tok := range n.e.Child {
		if pi, ok := tok.(*etree.ProcInst); ok {
			out = append(out, ProcInst{Target: pi.Target, Inst: pi.Inst})
		}
	}
	return out
}

// EtreeBuilder is the etree-backed Builder used to assemble merged
// documents.
type EtreeBuilder struct{}

func (EtreeBuilder) NewElement(localName string) Element {
	return etreeElement{e: etree.NewElement(localName)}
}

func (EtreeBuilder) Clone(e Element) Element {
	return etreeElement{e: unwrap(e).Copy()}
}

func (EtreeBuilder) WithChildren(e Element, children []Element) Element {
	out := unwrap(e).Copy()
	// Drop existing element children while preserving every non-element
	// token (text, comments, CDATA, processing instructions) in its
	// original relative order; the new children are appended after them.
	// This follows the teacher's "reconstruct by concatenation" approach
	// of never inventing whitespace that wasn't already there.
	var kept []etree.Token
	for _, tok := range out.Child {
		if _, isElem := tok.(*etree.Element); !isElem {
			kept = append(kept, tok)
		}
	}
	out.Child = kept
	for _, c := range children {
		out.AddChild(unwrap(c).Copy())
	}
	return etreeElement{e: out}
}

func (EtreeBuilder) WithAttributes(e Element, attrs []Attribute) Element {
	out := unwrap(e).Copy()
	out.Attr = out.Attr[:0]
	for _, a := range attrs {
		attr := out.CreateAttr(a.Name, a.Value)
		attr.Space = a.Space
	}
	return etreeElement{e: out}
}

func (EtreeBuilder) WithText(e Element, text string) Element {
	out := unwrap(e).Copy()
	out.SetText(text)
	return etreeElement{e: out}
}
