package xmldiff

import (
	"fmt"

	"github.com/odvcencio/xmldiffmerge/pkg/xmlnode"
)

// childPath builds the absolute path of a child element given its
// parent's path, its fully-qualified name, and its 1-based index among
// same-named siblings in the document the path describes (spec §6).
func childPath(parentPath, name string, indexAmongSameName int) string {
	return fmt.Sprintf("%s/%s[%d]", parentPath, name, indexAmongSameName)
}

// rootPath returns the path for a root element.
func rootPath(e xmlnode.Element, mode xmlnode.NamespaceMode) string {
	return "/" + e.FullName(mode) + "[1]"
}

// sameNameIndex assigns each element in elems its 1-based index among
// elements sharing its fully-qualified name, in document order.
func sameNameIndex(elems []xmlnode.Element, mode xmlnode.NamespaceMode) map[int]int {
	counts := map[string]int{}
	idx := make(map[int]int, len(elems))
	for i, e := range elems {
		name := e.FullName(mode)
		counts[name]++
		idx[i] = counts[name]
	}
	return idx
}

// attributePath suffixes an element path with an attribute name (spec §6).
func attributePath(elementPath, attrName string) string {
	return elementPath + "/@" + attrName
}
