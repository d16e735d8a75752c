package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeJSON(t *testing.T, env Envelope) []byte {
	t.Helper()
	b, err := json.MarshalIndent(env, "", "  ")
	require.NoError(t, err)
	return append(b, '\n')
}

func slugsFromEnvelope(env Envelope) []string {
	var out []string
	for _, v := range env.Data {
		if v.Attributes.Slug != nil {
			out = append(out, *v.Attributes.Slug)
		}
	}
	return out
}

func TestProcess_EmptyQuery(t *testing.T) {
	env, err := New().Process(fixtureRecords(), Query{})
	require.NoError(t, err)
	assert.Len(t, env.Data, 5)
	assert.Equal(t, 1, env.Meta.Pagination.PageCount)
	for _, v := range env.Data {
		assert.Equal(t, Attributes{}, v.Attributes)
	}
}

func TestProcess_EmptyCollection(t *testing.T) {
	env, err := New().Process(nil, Query{})
	require.NoError(t, err)
	assert.Equal(t, `{"data":[],"meta":{"pagination":{"pageCount":1}}}`, mustMarshal(t, env))

	env, err = New().Process(nil, Query{Pagination: &Pagination{PageSize: 4}})
	require.NoError(t, err)
	assert.Equal(t, `{"data":[],"meta":{"pagination":{"pageCount":0}}}`, mustMarshal(t, env))
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestProcess_Search(t *testing.T) {
	q := Query{
		Filters:    FilterSpec{}.Where("title", OpContainsI, "H"),
		Fields:     []string{"slug", "title"},
		Sort:       []string{"title"},
		Pagination: &Pagination{PageSize: 5},
	}
	env, err := New().Process(fixtureRecords(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"hades", "hollow-knight"}, slugsFromEnvelope(env))
	assert.Equal(t, 1, env.Meta.Pagination.PageCount)
}

func TestProcess_PagesThroughSortedResults(t *testing.T) {
	e := New()
	var got []string
	for page := 1; page <= 3; page++ {
		env, err := e.Process(fixtureRecords(), Query{
			Fields:     []string{"slug"},
			Sort:       []string{"id:desc"},
			Pagination: &Pagination{PageSize: 2, Page: page},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, env.Meta.Pagination.PageCount)
		got = append(got, slugsFromEnvelope(env)...)
	}
	assert.Equal(t, []string{"fez", "hades", "celeste", "stardew-valley", "hollow-knight"}, got)
}

func TestProcess_DoesNotMutateRecords(t *testing.T) {
	records := fixtureRecords()
	before := fixtureRecords()
	_, err := New().Process(records, Query{
		Sort:   []string{"title"},
		Fields: []string{"slug", "publishedAt"},
	})
	require.NoError(t, err)
	if diff := cmp.Diff(before, records); diff != "" {
		t.Errorf("records changed (-before +after):\n%s", diff)
	}
}

func TestProcess_MismatchFailIsAtomic(t *testing.T) {
	e := New(WithMismatchPolicy(MismatchFail))
	env, err := e.Process(fixtureRecords(), Query{
		Filters: FilterSpec{}.Where("id", OpContainsI, "1"),
		Fields:  []string{"slug"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.Nil(t, env.Data)

	env, err = New().Process(fixtureRecords(), Query{
		Filters: FilterSpec{}.Where("id", OpContainsI, "1"),
	})
	require.NoError(t, err)
	assert.Empty(t, env.Data)
}

func TestProcess_Options(t *testing.T) {
	e := New(
		WithComposition(AllConditions),
		WithDirectionalText(true),
		WithUploadPrefix("media/"),
	)
	env, err := e.Process(fixtureRecords(), Query{
		Filters: FilterSpec{}.
			Where("title", OpContainsI, "e").
			Where("subtitle", OpContainsI, "the"),
		Fields:   []string{"slug"},
		Populate: []Populate{{Relation: "image", Fields: []string{"url"}}},
		Sort:     []string{"title:desc"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hades", "celeste"}, slugsFromEnvelope(env))
	assert.Equal(t, "media/hades.jpg", *env.Data[0].Attributes.Image.Data.Attributes.URL)
}

func TestProcess_Concurrent(t *testing.T) {
	e := New()
	records := fixtureRecords()
	q := Query{Sort: []string{"title"}, Fields: []string{"slug"}, Pagination: &Pagination{PageSize: 2}}
	want, err := e.Process(records, q)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Process(records, q)
			if err != nil {
				errs <- err
				return
			}
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- fmt.Errorf("result differs:\n%s", diff)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestProcess_Golden(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "latest_reviews",
			query: "fields[0]=slug&fields[1]=title&fields[2]=publishedAt&populate[image][fields][0]=url&sort[0]=id:desc&pagination[pageSize]=2&pagination[page]=1",
		},
		{
			name:  "review_by_slug",
			query: "filters[slug][$eq]=celeste&fields[0]=slug&fields[1]=title&fields[2]=subtitle&fields[3]=body&fields[4]=publishedAt&populate[image][fields][0]=url&pagination[pageSize]=1&pagination[withCount]=false",
		},
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query)
			require.NoError(t, err)
			env, err := New().Process(fixtureRecords(), q)
			require.NoError(t, err)
			g.Assert(t, tt.name, envelopeJSON(t, env))
		})
	}
}
