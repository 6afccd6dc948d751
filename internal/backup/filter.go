package backup

import (
	"slices"
	"strings"
)

// Filter restricts a backup to records whose linking identifier is in a set.
// The zero Filter selects every record.
type Filter struct {
	ids        []string
	restricted bool
}

// All selects every record.
func All() Filter {
	return Filter{}
}

// Only selects records whose linking identifier is one of ids. Duplicates are
// ignored. Only() with no ids selects nothing.
func Only(ids ...string) Filter {
	set := slices.Clone(ids)
	slices.Sort(set)
	return Filter{ids: slices.Compact(set), restricted: true}
}

// IsAll reports whether the filter selects every record.
func (f Filter) IsAll() bool {
	return !f.restricted
}

// IsEmpty reports whether the filter can match no record.
func (f Filter) IsEmpty() bool {
	return f.restricted && len(f.ids) == 0
}

// IDs returns the sorted, de-duplicated identifiers. Nil for All.
func (f Filter) IDs() []string {
	return slices.Clone(f.ids)
}

// Contains reports whether id passes the filter.
func (f Filter) Contains(id string) bool {
	if !f.restricted {
		return true
	}
	_, found := slices.BinarySearch(f.ids, id)
	return found
}

func (f Filter) String() string {
	if !f.restricted {
		return "all"
	}
	return "only[" + strings.Join(f.ids, ",") + "]"
}
