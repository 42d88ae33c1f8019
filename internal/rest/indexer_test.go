package rest

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rootPath = "http://localhost:8080/xwiki/rest/wikis/xwiki/spaces/Main/pages"

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestIndexer_IndexFromXWiki(t *testing.T) {
	indexer := NewIndexer(WithDecoder(XWikiDecoder{}))

	index, err := indexer.IndexResources(rootPath, readFixture(t, "xwiki-index.json"))
	require.NoError(t, err)

	require.Contains(t, index, "a_story")
	assert.Equal(t, rootPath+"/a_story", index["a_story"].URI())
	assert.Equal(t, "/stories", index["a_story"].Breadcrumbs())

	require.Contains(t, index, "another_story")
	assert.Equal(t, rootPath+"/another_story", index["another_story"].URI())
	assert.Equal(t, "/stories", index["another_story"].Breadcrumbs())

	assert.NotContains(t, index, "stories", "unlisted parent must not be indexed")
	assert.Len(t, index, 2)
}

func TestIndexer_StoriesGrouping(t *testing.T) {
	entity := `{"name": "stories", "children": [{"name": "a_story"}, {"name": "another_story"}]}`

	index, err := NewIndexer().IndexResources(rootPath, entity)
	require.NoError(t, err)

	assert.Equal(t, map[string]Resource{
		"stories":       NewResource(rootPath+"/stories", ""),
		"a_story":       NewResource(rootPath+"/a_story", "/stories"),
		"another_story": NewResource(rootPath+"/another_story", "/stories"),
	}, index)
}

func TestIndexer_FlatURIsAndBreadcrumbs(t *testing.T) {
	index, err := NewIndexer().IndexResources(rootPath, readFixture(t, "tree-index.json"))
	require.NoError(t, err)

	// Five nodes across three levels, one entry each.
	require.Len(t, index, 5)

	tests := []struct {
		name        string
		breadcrumbs string
	}{
		{name: "stories", breadcrumbs: ""},
		{name: "a_story", breadcrumbs: "/stories"},
		{name: "another_story", breadcrumbs: "/stories"},
		{name: "a_nested_story", breadcrumbs: "/stories/another_story"},
		{name: "Sandbox", breadcrumbs: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := index[tt.name]
			require.True(t, ok)
			assert.Equal(t, rootPath+"/"+tt.name, r.URI(), "URIs stay flat under the root")
			assert.Equal(t, tt.breadcrumbs, r.Breadcrumbs())
		})
	}
}

func TestIndexer_RootName(t *testing.T) {
	indexer := NewIndexer(WithRootName("Main"))

	index, err := indexer.IndexResources(rootPath, readFixture(t, "tree-index.json"))
	require.NoError(t, err)

	assert.Equal(t, "/Main", index["stories"].Breadcrumbs())
	assert.Equal(t, "/Main/stories", index["a_story"].Breadcrumbs())
	assert.Equal(t, "/Main/stories/another_story", index["a_nested_story"].Breadcrumbs())
}

func TestIndexer_EmptyHierarchy(t *testing.T) {
	tests := []struct {
		name    string
		decoder Decoder
		entity  string
	}{
		{name: "empty object", decoder: JSONDecoder{}, entity: "{}"},
		{name: "empty list", decoder: JSONDecoder{}, entity: "[]"},
		{name: "empty children", decoder: JSONDecoder{}, entity: `{"children": []}`},
		{name: "null", decoder: JSONDecoder{}, entity: "null"},
		{name: "empty yaml", decoder: YAMLDecoder{}, entity: ""},
		{name: "empty xml root", decoder: XMLDecoder{}, entity: "<pages/>"},
		{name: "empty xwiki listing", decoder: XWikiDecoder{}, entity: `{"pageSummaries": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, err := NewIndexer(WithDecoder(tt.decoder)).IndexResources(rootPath, tt.entity)
			require.NoError(t, err)
			require.NotNil(t, index)
			assert.Empty(t, index)
		})
	}
}

func TestIndexer_Idempotent(t *testing.T) {
	indexer := NewIndexer()
	entity := readFixture(t, "tree-index.json")

	first, err := indexer.IndexResources(rootPath, entity)
	require.NoError(t, err)
	second, err := indexer.IndexResources(rootPath, entity)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// Each call owns its map.
	delete(first, "stories")
	assert.Contains(t, second, "stories")
}

func TestIndexer_ConcurrentCalls(t *testing.T) {
	indexer := NewIndexer()
	entity := readFixture(t, "tree-index.json")

	var wg sync.WaitGroup
	results := make([]map[string]Resource, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = indexer.IndexResources(rootPath, entity)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
}

func TestIndexer_Collisions(t *testing.T) {
	entity := `[
		{"name": "left", "children": [{"name": "x"}]},
		{"name": "right", "children": [{"name": "x"}]}
	]`

	t.Run("last write wins", func(t *testing.T) {
		index, err := NewIndexer().IndexResources(rootPath, entity)
		require.NoError(t, err)
		assert.Len(t, index, 3)
		assert.Equal(t, NewResource(rootPath+"/x", "/right"), index["x"])
	})

	t.Run("rejected", func(t *testing.T) {
		index, err := NewIndexer(WithCollisionPolicy(RejectCollisions)).IndexResources(rootPath, entity)
		require.Error(t, err)
		assert.Nil(t, index)
		assert.True(t, errors.Is(err, ErrCollision))

		var collision *CollisionError
		require.True(t, errors.As(err, &collision))
		assert.Equal(t, "x", collision.Name)
		assert.Equal(t, "/left", collision.First.Breadcrumbs())
		assert.Equal(t, "/right", collision.Conflict.Breadcrumbs())
	})
}

func TestIndexer_DecodeFailures(t *testing.T) {
	tests := []struct {
		name    string
		entity  string
		wantErr error
	}{
		{name: "malformed", entity: `{"name": `, wantErr: ErrMalformed},
		{name: "empty text", entity: "", wantErr: ErrMalformed},
		{name: "missing name", entity: `[{"children": []}]`, wantErr: ErrMissingName},
		{name: "empty name", entity: `[{"name": ""}]`, wantErr: ErrMissingName},
		{name: "nested missing name", entity: `{"name": "a", "children": [{"title": "b"}]}`, wantErr: ErrMissingName},
		{name: "non-string name", entity: `[{"name": 42}]`, wantErr: ErrUnsupported},
		{name: "children not a list", entity: `{"name": "a", "children": {"name": "b"}}`, wantErr: ErrUnsupported},
		{name: "node not an object", entity: `["a_story"]`, wantErr: ErrUnsupported},
		{name: "scalar document", entity: `"a_story"`, wantErr: ErrUnsupported},
		{name: "object without name or children", entity: `{"title": "x"}`, wantErr: ErrMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, err := NewIndexer().IndexResources(rootPath, tt.entity)
			require.Error(t, err)
			assert.Nil(t, index, "no partial index on failure")
			assert.ErrorIs(t, err, tt.wantErr)

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
		})
	}
}

func TestIndexer_IndexNodes(t *testing.T) {
	nodes := []Node{
		{Name: "stories", Group: true, Children: []Node{{Name: "a_story"}}},
		{Name: "docs", Children: []Node{{Name: "readme"}}},
	}

	index, err := NewIndexer().IndexNodes("http://host/pages", nodes)
	require.NoError(t, err)

	assert.Equal(t, map[string]Resource{
		"a_story": NewResource("http://host/pages/a_story", "/stories"),
		"docs":    NewResource("http://host/pages/docs", ""),
		"readme":  NewResource("http://host/pages/readme", "/docs"),
	}, index)

	_, err = NewIndexer().IndexNodes("http://host/pages", []Node{{Name: "a", Children: []Node{{}}}})
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestIndexer_MalformedRootIsConcatenated(t *testing.T) {
	index, err := NewIndexer().IndexResources("not a uri", `[{"name": "a"}]`)
	require.NoError(t, err)
	assert.Equal(t, "not a uri/a", index["a"].URI())
}

func TestCollisionPolicy_String(t *testing.T) {
	assert.Equal(t, "last-write-wins", LastWriteWins.String())
	assert.Equal(t, "reject", RejectCollisions.String())
}
