package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/reviewcms/query"
)

const recordsYAML = `
- id: 1
  slug: hollow-knight
  title: Hollow Knight
  subtitle: A haunting metroidvania
  body: Bugs.
  publishedAt: "2023-05-06T10:00:00.000Z"
  url: hollow-knight.jpg
- id: 2
  slug: celeste
  title: Celeste
  subtitle: Climb the mountain
  body: Strawberries.
  publishedAt: "2023-04-20T12:00:00.000Z"
  url: celeste.jpg
`

func writeRecords(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviews.yaml")
	require.NoError(t, os.WriteFile(path, []byte(recordsYAML), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"serve", "seed", "query", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "reviewcms dev\n", out)
}

func TestQueryFromDataFile(t *testing.T) {
	out, err := execute(t, "query", "--data", writeRecords(t), "sort[0]=publishedAt&fields[0]=slug")
	require.NoError(t, err)

	var env query.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "celeste", *env.Data[0].Attributes.Slug)
	assert.Equal(t, "hollow-knight", *env.Data[1].Attributes.Slug)
	assert.Equal(t, 1, env.Meta.Pagination.PageCount)
}

func TestQueryMismatchFails(t *testing.T) {
	t.Setenv("REVIEWCMS_MISMATCH_MODE", "fail")
	_, err := execute(t, "query", "--data", writeRecords(t), "filters[id][$containsi]=1")
	assert.ErrorIs(t, err, query.ErrTypeMismatch)
}

func TestSeedThenQueryStore(t *testing.T) {
	t.Setenv("REVIEWCMS_DATABASE_PATH", filepath.Join(t.TempDir(), "reviews.db"))

	out, err := execute(t, "seed", writeRecords(t))
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 reviews")

	out, err = execute(t, "query", "filters[slug][$eq]=celeste&fields[0]=title")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"attributes":{"title":"Celeste"}}],"meta":{"pagination":{"pageCount":1}}}`, out)
}

func TestSeedWithoutFile(t *testing.T) {
	t.Setenv("REVIEWCMS_DATABASE_PATH", filepath.Join(t.TempDir(), "reviews.db"))
	_, err := execute(t, "seed")
	assert.Error(t, err)
}
