// Package location describes where a book is deployed.
package location

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type Category int8

const (
	MD Category = iota
	TD
	Strategy
	System
)

func (c Category) String() string {
	switch c {
	case MD:
		return "md"
	case TD:
		return "td"
	case Strategy:
		return "strategy"
	case System:
		return "system"
	}
	return fmt.Sprintf("category(%d)", int8(c))
}

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md":
		return MD, nil
	case "td":
		return TD, nil
	case "strategy":
		return Strategy, nil
	case "system":
		return System, nil
	}
	return MD, fmt.Errorf("unknown location category %q", s)
}

// Location is read once when a book is built.
type Location struct {
	Category Category
	Group    string
	Name     string
	UID      uint32
}

// New builds a location whose UID is derived from its path.
func New(category Category, group, name string) Location {
	loc := Location{Category: category, Group: group, Name: name}
	loc.UID = uint32(xxhash.Sum64String(loc.UName()))
	return loc
}

// UName is the "category/group/name" path of the location.
func (l Location) UName() string {
	return l.Category.String() + "/" + l.Group + "/" + l.Name
}

func (l Location) String() string {
	return fmt.Sprintf("%s [%08x]", l.UName(), l.UID)
}
