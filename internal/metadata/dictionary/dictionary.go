// Package dictionary maps DICOM tags to the attribute names exposed by the
// viewer. The dictionary is built once per process and never mutated, so it
// is safe to share between concurrent requests without locking.
package dictionary

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// Entry names one attribute slot in a document header.
type Entry struct {
	Tag  tag.Tag
	Name string
	// VR is the value representation used when the document does not carry
	// one itself (implicit VR transfer syntax).
	VR string
	// Default marks attributes shown in the viewer's default column set.
	Default bool
}

// Key returns the 32-bit group<<16|element identifier of the entry.
func (e Entry) Key() uint32 {
	return Key(e.Tag)
}

// Key packs a tag into its 32-bit identifier.
func Key(t tag.Tag) uint32 {
	return uint32(t.Group)<<16 | uint32(t.Element)
}

// Dictionary is a read-only tag/name index.
type Dictionary struct {
	entries []Entry
	byKey   map[uint32]Entry
	byName  map[string]Entry
}

// New builds a dictionary from entries. Duplicate tags or names are a
// programming error and panic.
func New(entries []Entry) *Dictionary {
	d := &Dictionary{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[uint32]Entry, len(entries)),
		byName:  make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		if _, dup := d.byKey[e.Key()]; dup {
			panic(fmt.Sprintf("dictionary: duplicate tag %s", e.Tag))
		}
		if _, dup := d.byName[e.Name]; dup {
			panic(fmt.Sprintf("dictionary: duplicate name %q", e.Name))
		}
		d.entries = append(d.entries, e)
		d.byKey[e.Key()] = e
		d.byName[e.Name] = e
	}
	return d
}

// Standard returns the process-wide dictionary.
var Standard = sync.OnceValue(func() *Dictionary {
	return New(standardEntries)
})

// Lookup finds the entry for a 32-bit tag identifier.
func (d *Dictionary) Lookup(key uint32) (Entry, bool) {
	e, ok := d.byKey[key]
	return e, ok
}

// ByName finds the entry for an attribute name (case-sensitive).
func (d *Dictionary) ByName(name string) (Entry, bool) {
	e, ok := d.byName[name]
	return e, ok
}

// VR returns the value representation registered for key. Group length
// elements (gggg,0000) are always UL; tags outside this dictionary fall back
// to the standard DICOM data dictionary.
func (d *Dictionary) VR(key uint32) (string, bool) {
	if e, ok := d.byKey[key]; ok {
		return e.VR, true
	}
	if key&0xFFFF == 0 {
		return "UL", true
	}
	info, err := tag.Find(tag.Tag{Group: uint16(key >> 16), Element: uint16(key)})
	if err != nil || info.VR == "" {
		return "", false
	}
	return info.VR, true
}

// Names returns every attribute name, sorted.
func (d *Dictionary) Names() []string {
	names := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns the default attribute names in dictionary order.
func (d *Dictionary) Defaults() []string {
	var names []string
	for _, e := range d.entries {
		if e.Default {
			names = append(names, e.Name)
		}
	}
	return names
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}
