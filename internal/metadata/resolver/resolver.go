// Package resolver turns parsed header elements into named display values.
package resolver

import (
	"dicomviewer/internal/metadata/dictionary"
	"dicomviewer/internal/metadata/parser"
)

// AttributeMap maps attribute names to display strings.
type AttributeMap map[string]string

// ElementSource yields raw elements front to back. *parser.Scanner
// satisfies it.
type ElementSource interface {
	Next() bool
	Element() parser.RawElement
}

// Names is the subset of the dictionary the resolver needs.
type Names interface {
	Lookup(key uint32) (dictionary.Entry, bool)
}

// Resolve drains src and returns the attributes that the dictionary can name
// and the selection keeps. Tags without a dictionary entry are dropped. When
// a tag repeats, the last occurrence wins.
//
// Resolve never fails: undecodable values degrade to a hex rendering. The
// caller is responsible for checking the source for a fatal error after
// Resolve returns.
func Resolve(src ElementSource, sel Selection, dict Names) AttributeMap {
	out := make(AttributeMap)
	for src.Next() {
		el := src.Element()
		entry, ok := dict.Lookup(el.Tag)
		if !ok || !sel.includes(entry.Name) {
			continue
		}
		out[entry.Name] = Decode(el)
	}
	return out
}
