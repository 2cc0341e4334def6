package resolver

import (
	"slices"

	strutil "dicomviewer/pkg/platform/strings"
)

// Selection chooses which resolved attributes reach the caller. It has two
// forms: All, and a Subset of attribute names.
type Selection struct {
	subset map[string]struct{}
	names  []string
}

// All selects every attribute the dictionary can name.
func All() Selection {
	return Selection{}
}

// Subset selects the named attributes. Names match dictionary names exactly,
// case and whitespace included. Names that do not appear in the document are
// simply absent from the result.
func Subset(names ...string) Selection {
	names = strutil.Dedupe(names)
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Selection{subset: set, names: names}
}

// SelectionFromFields maps a request's field list to a selection. A nil or
// empty list selects everything.
func SelectionFromFields(fields []string) Selection {
	if len(fields) == 0 {
		return All()
	}
	return Subset(fields...)
}

// IsAll reports whether the selection keeps every attribute.
func (s Selection) IsAll() bool {
	return s.subset == nil
}

// Names returns the requested names for a subset, nil for All.
func (s Selection) Names() []string {
	return slices.Clone(s.names)
}

func (s Selection) includes(name string) bool {
	if s.subset == nil {
		return true
	}
	_, ok := s.subset[name]
	return ok
}
