package match

import (
	"testing"

	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// fakeElement is a minimal in-memory Element for unit-testing the
// scoring function without pulling in the etree adapter.
type fakeElement struct {
	name  string
	attrs []xmlnode.Attribute
	kids  []xmlnode.Element
	text  string
}

func (f fakeElement) LocalName() string     { return f.name }
func (f fakeElement) Prefix() string        { return "" }
func (f fakeElement) NamespaceURI() string  { return "" }
func (f fakeElement) FullName(xmlnode.NamespaceMode) string {
	return f.name
}
func (f fakeElement) Attributes() []xmlnode.Attribute     { return f.attrs }
func (f fakeElement) ChildElements() []xmlnode.Element    { return f.kids }
func (f fakeElement) Text() string                        { return f.text }
func (f fakeElement) IsLeaf() bool                         { return len(f.kids) == 0 }
func (f fakeElement) Comments() []xmlnode.Comment          { return nil }
func (f fakeElement) CDataSections() []xmlnode.CData        { return nil }
func (f fakeElement) ProcInsts() []xmlnode.ProcInst          { return nil }

func attr(name, value string) xmlnode.Attribute {
	return xmlnode.Attribute{Name: name, Value: value}
}

func TestDefaultScoreNameMismatchIsZero(t *testing.T) {
	a := fakeElement{name: "foo"}
	b := fakeElement{name: "bar"}
	if s := Default(a, b, Config{}); s != 0 {
		t.Fatalf("expected 0, got %v", s)
	}
}

func TestDefaultScoreNilIsZero(t *testing.T) {
	a := fakeElement{name: "foo"}
	if s := Default(nil, a, Config{}); s != 0 {
		t.Fatalf("expected 0 for nil e1, got %v", s)
	}
}

func TestDefaultScoreKeyAttributeBoostsMatch(t *testing.T) {
	a := fakeElement{name: "item", attrs: []xmlnode.Attribute{attr("id", "1"), attr("v", "x")}}
	b := fakeElement{name: "item", attrs: []xmlnode.Attribute{attr("id", "1"), attr("v", "y")}}

	cfg := Config{KeyAttributeNames: []string{"id"}}
	score := Default(a, b, cfg)
	if score < MatchThreshold {
		t.Fatalf("expected a match (score >= %v), got %v", MatchThreshold, score)
	}

	// Without the key attribute configured, only the 50% attribute
	// overlap and the equal (empty) leaf text apply: 1.0 base + 0.5
	// overlap + 1.0 text = 2.5, against 12.5 with the key attribute.
	noKeyScore := Default(a, b, Config{})
	if noKeyScore >= score {
		t.Fatalf("expected key-attribute score (%v) to exceed plain score (%v)", score, noKeyScore)
	}
}

func TestDefaultScoreLeafTextEquality(t *testing.T) {
	a := fakeElement{name: "title", text: "Hello"}
	b := fakeElement{name: "title", text: "Hello"}
	c := fakeElement{name: "title", text: "Goodbye"}

	if Default(a, b, Config{}) <= Default(a, c, Config{}) {
		t.Fatalf("expected equal-text leaves to score higher than differing-text leaves")
	}
}

func TestDefaultScoreIgnoresNamespaceDecl(t *testing.T) {
	a := fakeElement{name: "r", attrs: []xmlnode.Attribute{{Space: "xmlns", Name: "xmlns", Value: "urn:a"}}}
	b := fakeElement{name: "r"}
	// Both have zero comparable attributes after excluding the xmlns
	// declaration, so overlap contributes 0. Both are leaves with equal
	// (empty) text, so the score is 1.0 base + 1.0 leaf text = 2.0. Here
	// we just assert the xmlns declaration isn't counted as a mismatched
	// attribute.
	score := Default(a, b, Config{})
	if score != 2.0 {
		t.Fatalf("expected score 2.0 (xmlns decl excluded from comparison), got %v", score)
	}
}
