package query

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{
			name: "empty",
			raw:  "",
			want: Query{},
		},
		{
			name: "search",
			raw:  "filters[title][$containsi]=hollow+kn&fields[0]=slug&fields[1]=title&sort[0]=title&pagination[pageSize]=5",
			want: Query{
				Filters:    FilterSpec{{Field: "title", Conditions: []Condition{{Op: OpContainsI, Value: "hollow kn"}}}},
				Fields:     []string{"slug", "title"},
				Sort:       []string{"title"},
				Pagination: &Pagination{PageSize: 5},
			},
		},
		{
			name: "filter order is kept",
			raw:  "filters[title][$eq]=A&filters[body][$containsi]=x&filters[title][$containsi]=b",
			want: Query{
				Filters: FilterSpec{
					{Field: "title", Conditions: []Condition{{Op: OpEq, Value: "A"}, {Op: OpContainsI, Value: "b"}}},
					{Field: "body", Conditions: []Condition{{Op: OpContainsI, Value: "x"}}},
				},
			},
		},
		{
			name: "percent encoded brackets",
			raw:  "filters%5Bslug%5D%5B%24eq%5D=hades&sort%5B0%5D=publishedAt%3Adesc",
			want: Query{
				Filters: FilterSpec{{Field: "slug", Conditions: []Condition{{Op: OpEq, Value: "hades"}}}},
				Sort:    []string{"publishedAt:desc"},
			},
		},
		{
			name: "indices order lists",
			raw:  "fields[1]=title&fields[0]=slug&sort[1]=id:desc&sort[0]=title",
			want: Query{
				Fields: []string{"slug", "title"},
				Sort:   []string{"title", "id:desc"},
			},
		},
		{
			name: "list spellings",
			raw:  "fields=slug,title&fields[]=body&sort=publishedAt:desc&sort=title",
			want: Query{
				Fields: []string{"slug", "title", "body"},
				Sort:   []string{"publishedAt:desc", "title"},
			},
		},
		{
			name: "populate",
			raw:  "populate[image][fields][0]=url&populate[author][fields][0]=name",
			want: Query{
				Populate: []Populate{
					{Relation: "image", Fields: []string{"url"}},
					{Relation: "author", Fields: []string{"name"}},
				},
			},
		},
		{
			name: "populate shorthand",
			raw:  "populate=image",
			want: Query{Populate: []Populate{{Relation: "image", Fields: []string{"url"}}}},
		},
		{
			name: "populate wildcard",
			raw:  "populate=*",
			want: Query{Populate: []Populate{{Relation: "image", Fields: []string{"url"}}}},
		},
		{
			name: "pagination",
			raw:  "pagination[pageSize]=6&pagination[page]=2&pagination[withCount]=true",
			want: Query{Pagination: &Pagination{PageSize: 6, Page: 2, WithCount: true}},
		},
		{
			name: "bad numbers are ignored",
			raw:  "pagination[pageSize]=six&pagination[page]=2",
			want: Query{Pagination: &Pagination{Page: 2}},
		},
		{
			name: "filter without operator keeps the field",
			raw:  "filters[title]=Celeste",
			want: Query{Filters: FilterSpec{{Field: "title"}}},
		},
		{
			name: "unknown keys ignored",
			raw:  "locale=en&publicationState=live&&",
			want: Query{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("filters[title][$eq]=%zz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedQuery))

	_, err = Parse("filters%zz=1")
	assert.True(t, errors.Is(err, ErrMalformedQuery))
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"sort", []string{"sort"}},
		{"fields[]", []string{"fields", ""}},
		{"filters[title][$eq]", []string{"filters", "title", "$eq"}},
		{"populate[image][fields][0]", []string{"populate", "image", "fields", "0"}},
		{"broken[title", []string{"broken"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitKey(tt.key), tt.key)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	q := Query{
		Filters:    FilterSpec{}.Where("title", OpContainsI, "a & b").Where("slug", OpEq, "x"),
		Fields:     []string{"slug", "title"},
		Populate:   []Populate{{Relation: "image", Fields: []string{"url"}}},
		Sort:       []string{"publishedAt:desc"},
		Pagination: &Pagination{PageSize: 6, Page: 2},
	}
	raw := q.Encode()
	assert.Contains(t, raw, "filters[title][$containsi]=a+%26+b")

	got, err := Parse(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(q, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
