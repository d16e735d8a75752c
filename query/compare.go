package query

import (
	"cmp"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders records by a list of sort keys, first key first.
// A Comparator owns a collator and must not be shared between goroutines.
type Comparator struct {
	keys     []SortKey
	collator *collate.Collator
	// directionalText applies the key direction to text comparisons too.
	directionalText bool
}

// NewComparator parses sort entries ("field" or "field:direction") and
// prepares a collator for tag.
func NewComparator(sort []string, tag language.Tag, directionalText bool) *Comparator {
	keys := make([]SortKey, 0, len(sort))
	for _, s := range sort {
		keys = append(keys, ParseSortKey(s))
	}
	return &Comparator{
		keys:            keys,
		collator:        collate.New(tag),
		directionalText: directionalText,
	}
}

// Compare returns -1, 0 or 1. Text is collated and, unless directionalText is
// set, always ascending; other values use natural order with the key's
// direction. Keys after the first decisive one are not consulted.
func (c *Comparator) Compare(a, b Record) int {
	for _, k := range c.keys {
		av, _ := a.Field(k.Field)
		bv, _ := b.Field(k.Field)
		if as, ok := av.(string); ok {
			bs, _ := bv.(string)
			r := c.collator.CompareString(as, bs)
			if r == 0 {
				continue
			}
			if c.directionalText && k.Desc {
				return -r
			}
			return r
		}
		r := compareNatural(av, bv)
		if r == 0 {
			continue
		}
		if k.Desc {
			return -r
		}
		return r
	}
	return 0
}

func compareNatural(a, b any) int {
	x, ok := toNumber(a)
	if !ok {
		return 0
	}
	y, ok := toNumber(b)
	if !ok {
		return 0
	}
	return cmp.Compare(x, y)
}
