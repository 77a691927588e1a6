package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/quill/pkg/posts"
)

var base = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func samplePosts() []posts.Post {
	return []posts.Post{
		{ID: "3", Title: "zebra crossing", Body: "stripes", Tags: []string{"animals"}, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "2", Title: "Apple pie", Body: "baking", Excerpt: "dessert notes", Tags: []string{"food", "Go"}, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "1", Title: "go channels", Body: "select and range", Tags: []string{}, CreatedAt: base.Add(time.Hour)},
	}
}

func ids(list []posts.Post) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func TestCriteria_Matches(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no filters", Criteria{}, []string{"3", "2", "1"}},
		{"query over title", Criteria{Query: "GO"}, []string{"2", "1"}},
		{"query over excerpt", Criteria{Query: "dessert"}, []string{"2"}},
		{"query over body", Criteria{Query: "select"}, []string{"1"}},
		{"hash query matches tags only", Criteria{Query: "#go"}, []string{"2"}},
		{"tag filter", Criteria{Tag: "food"}, []string{"2"}},
		{"tag filter ignores case and hash", Criteria{Tag: "#go"}, []string{"2"}},
		{"since", Criteria{Since: base.Add(2 * time.Hour)}, []string{"3", "2"}},
		{"until", Criteria{Until: base.Add(90 * time.Minute)}, []string{"1"}},
		{"combined", Criteria{Query: "go", Since: base.Add(90 * time.Minute)}, []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.criteria.Apply(samplePosts())))
		})
	}
}

func TestCriteria_HasFilters(t *testing.T) {
	assert.False(t, (&Criteria{}).HasFilters())
	assert.False(t, (&Criteria{Query: "  "}).HasFilters())
	assert.True(t, (&Criteria{Tag: "x"}).HasFilters())
	assert.True(t, (&Criteria{Since: base}).HasFilters())
}

func TestSort(t *testing.T) {
	list := samplePosts()
	Sort(list, SortOldest)
	assert.Equal(t, []string{"1", "2", "3"}, ids(list))

	Sort(list, SortNewest)
	assert.Equal(t, []string{"3", "2", "1"}, ids(list))

	Sort(list, SortTitle)
	assert.Equal(t, []string{"2", "1", "3"}, ids(list))
}

func TestParseSortMode(t *testing.T) {
	mode, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, mode)

	mode, err = ParseSortMode("title")
	require.NoError(t, err)
	assert.Equal(t, SortTitle, mode)

	_, err = ParseSortMode("random")
	assert.Error(t, err)
}
