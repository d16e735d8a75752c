package query

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Parse decodes a bracketed query string such as
//
//	filters[title][$containsi]=foo&sort[0]=publishedAt:desc&pagination[pageSize]=10
//
// Filter order is significant, so the raw string is walked pair by pair
// instead of going through url.Values. Unknown top-level keys are ignored.
func Parse(rawQuery string) (Query, error) {
	var (
		q        Query
		fields   list
		sort     list
		populate []*populateEntry
	)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return Query{}, fmt.Errorf("%w: key %q: %v", ErrMalformedQuery, rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return Query{}, fmt.Errorf("%w: value for %q: %v", ErrMalformedQuery, key, err)
		}
		path := splitKey(key)

		switch path[0] {
		case "filters":
			if len(path) < 2 || path[1] == "" {
				continue
			}
			if len(path) < 3 {
				q.Filters = q.Filters.field(path[1])
				continue
			}
			q.Filters = q.Filters.Where(path[1], path[2], value)
		case "fields":
			fields.add(path, 1, value)
		case "sort":
			sort.add(path, 1, value)
		case "populate":
			populate = parsePopulate(populate, path, value)
		case "pagination":
			if len(path) < 2 {
				continue
			}
			if q.Pagination == nil {
				q.Pagination = &Pagination{}
			}
			switch path[1] {
			case "pageSize":
				if n, err := strconv.Atoi(value); err == nil {
					q.Pagination.PageSize = n
				}
			case "page":
				if n, err := strconv.Atoi(value); err == nil {
					q.Pagination.Page = n
				}
			case "withCount":
				if b, err := strconv.ParseBool(value); err == nil {
					q.Pagination.WithCount = b
				}
			}
		}
	}

	q.Fields = fields.values()
	q.Sort = sort.values()
	for _, p := range populate {
		q.Populate = append(q.Populate, Populate{Relation: p.relation, Fields: p.fields.values()})
	}
	return q, nil
}

// field makes sure f has an entry for name even if it carries no condition.
func (f FilterSpec) field(name string) FilterSpec {
	for _, ff := range f {
		if ff.Field == name {
			return f
		}
	}
	return append(f, FieldFilter{Field: name})
}

// splitKey turns "a[b][c]" into ["a","b","c"] and "a[]" into ["a",""].
func splitKey(key string) []string {
	root, rest, ok := strings.Cut(key, "[")
	path := []string{root}
	if !ok {
		return path
	}
	rest = "[" + rest
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

type populateEntry struct {
	relation string
	fields   list
}

func parsePopulate(entries []*populateEntry, path []string, value string) []*populateEntry {
	entry := func(rel string) *populateEntry {
		for _, e := range entries {
			if e.relation == rel {
				return e
			}
		}
		e := &populateEntry{relation: rel}
		entries = append(entries, e)
		return e
	}
	// populate=image, populate[0]=image, populate=*: every field of the relation.
	if len(path) == 1 || (len(path) == 2 && isIndex(path[1])) {
		for _, rel := range splitList(value) {
			if rel == "*" {
				rel = RelationImage
			}
			e := entry(rel)
			if len(e.fields.tail) == 0 && len(e.fields.indexed) == 0 {
				e.fields.tail = []string{FieldURL}
			}
		}
		return entries
	}
	e := entry(path[1])
	if len(path) >= 3 && path[2] == "fields" {
		e.fields.add(path, 3, value)
	}
	return entries
}

// list collects array values sent as key=v, key[]=v, key[3]=v or key=a,b.
// Indexed entries come first in index order, then the rest in arrival order.
type list struct {
	indexed map[int][]string
	tail    []string
}

func (l *list) add(path []string, depth int, value string) {
	vals := splitList(value)
	if len(path) > depth {
		if n, err := strconv.Atoi(path[depth]); err == nil && n >= 0 {
			if l.indexed == nil {
				l.indexed = make(map[int][]string)
			}
			l.indexed[n] = append(l.indexed[n], vals...)
			return
		}
	}
	l.tail = append(l.tail, vals...)
}

func (l *list) values() []string {
	if len(l.indexed) == 0 {
		return l.tail
	}
	keys := make([]int, 0, len(l.indexed))
	for k := range l.indexed {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var out []string
	for _, k := range keys {
		out = append(out, l.indexed[k]...)
	}
	return append(out, l.tail...)
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func isIndex(s string) bool {
	if s == "" {
		return true
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// Encode renders q in the bracketed form Parse reads, with keys left
// unescaped and values escaped.
func (q Query) Encode() string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, key+"="+url.QueryEscape(value))
	}
	for _, ff := range q.Filters {
		for _, c := range ff.Conditions {
			add(fmt.Sprintf("filters[%s][%s]", ff.Field, c.Op), fmt.Sprint(c.Value))
		}
	}
	for i, f := range q.Fields {
		add(fmt.Sprintf("fields[%d]", i), f)
	}
	for _, p := range q.Populate {
		for i, f := range p.Fields {
			add(fmt.Sprintf("populate[%s][fields][%d]", p.Relation, i), f)
		}
	}
	for i, s := range q.Sort {
		add(fmt.Sprintf("sort[%d]", i), s)
	}
	if p := q.Pagination; p != nil {
		add("pagination[pageSize]", strconv.Itoa(p.PageSize))
		if p.Page != 0 {
			add("pagination[page]", strconv.Itoa(p.Page))
		}
		if p.WithCount {
			add("pagination[withCount]", "true")
		}
	}
	return strings.Join(parts, "&")
}
