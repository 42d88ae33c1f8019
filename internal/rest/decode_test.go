package rest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wantTree = []Node{
	{Name: "stories", Children: []Node{
		{Name: "a_story"},
		{Name: "another_story", Children: []Node{{Name: "a_nested_story"}}},
	}},
	{Name: "Sandbox"},
}

func TestDecoders_SameTree(t *testing.T) {
	tests := []struct {
		name    string
		decoder Decoder
		fixture string
	}{
		{name: "json", decoder: JSONDecoder{}, fixture: "tree-index.json"},
		{name: "yaml", decoder: YAMLDecoder{}, fixture: "tree-index.yaml"},
		{name: "xml", decoder: XMLDecoder{}, fixture: "tree-index.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := tt.decoder.Decode(readFixture(t, tt.fixture))
			require.NoError(t, err)
			assert.Equal(t, normalize(wantTree), normalize(nodes))
		})
	}
}

// normalize drops the difference between nil and empty child lists.
func normalize(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Node{Name: n.Name, Group: n.Group, Children: normalize(n.Children)}
	}
	return out
}

func TestJSONDecoder_CustomKeys(t *testing.T) {
	d := JSONDecoder{NameKey: "id", ChildrenKey: "pageSummaries"}

	nodes, err := d.Decode(`{"pageSummaries": [{"id": "stories", "pageSummaries": [{"id": "a_story"}]}]}`)
	require.NoError(t, err)
	assert.Equal(t, []Node{{Name: "stories", Children: []Node{{Name: "a_story"}}}}, nodes)

	_, err = d.Decode(`[{"name": "stories"}]`)
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestJSONDecoder_ErrorPath(t *testing.T) {
	_, err := JSONDecoder{}.Decode(`[{"name": "a", "children": [{"name": "b"}, {"title": "c"}]}]`)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "[0].children[1]", decodeErr.Path)
	assert.Contains(t, err.Error(), "[0].children[1]")
}

func TestTreeDecoders_TrimNames(t *testing.T) {
	tests := []struct {
		name    string
		decoder Decoder
		entity  string
	}{
		{name: "json", decoder: JSONDecoder{}, entity: `[{"name": " Sandbox ", "children": [{"name": "\ta_story\n"}]}]`},
		{name: "yaml", decoder: YAMLDecoder{}, entity: "- name: \" Sandbox \"\n  children:\n    - name: \"a_story \"\n"},
		{name: "xml", decoder: XMLDecoder{}, entity: `<pages><page name=" Sandbox "><page><name> a_story </name></page></page></pages>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := tt.decoder.Decode(tt.entity)
			require.NoError(t, err)
			assert.Equal(t, []Node{{Name: "Sandbox", Children: []Node{{Name: "a_story"}}}}, normalize(nodes))

			_, err = tt.decoder.Decode(strings.ReplaceAll(tt.entity, "Sandbox", ""))
			assert.ErrorIs(t, err, ErrMissingName)
		})
	}
}

func TestYAMLDecoder_Malformed(t *testing.T) {
	_, err := YAMLDecoder{}.Decode("children: [a_story, another_story")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestXMLDecoder(t *testing.T) {
	tests := []struct {
		name    string
		decoder XMLDecoder
		entity  string
		want    []Node
		wantErr error
	}{
		{
			name:   "single root page",
			entity: `<page name="stories"><page name="a_story"/></page>`,
			want:   []Node{{Name: "stories", Children: []Node{{Name: "a_story"}}}},
		},
		{
			name:    "custom element names",
			decoder: XMLDecoder{NodeElement: "pageSummary", NameKey: "name", ChildrenKey: "pageSummaries"},
			entity: `<pages><pageSummary><name>stories</name><pageSummaries>
				<pageSummary><name>a_story</name></pageSummary>
			</pageSummaries></pageSummary></pages>`,
			want: []Node{{Name: "stories", Children: []Node{{Name: "a_story"}}}},
		},
		{
			name:    "missing name",
			entity:  `<pages><page><title>x</title></page></pages>`,
			wantErr: ErrMissingName,
		},
		{
			name:    "structured name",
			entity:  `<pages><page><name><first>x</first></name></page></pages>`,
			wantErr: ErrUnsupported,
		},
		{
			name:    "unclosed element",
			entity:  `<pages><page name="a">`,
			wantErr: ErrMalformed,
		},
		{
			name:   "no root element",
			entity: `<?xml version="1.0"?>`,
			want:   []Node{},
		},
		{
			name:    "unexpected element in the root",
			entity:  `<pages><item name="a_story"/><Page name="b"/></pages>`,
			wantErr: ErrUnsupported,
		},
		{
			name:    "unexpected element in a children wrapper",
			entity:  `<pages><page name="stories"><children><page name="a"/><story name="b"/></children></page></pages>`,
			wantErr: ErrUnsupported,
		},
		{
			name:   "fields of a node are ignored",
			entity: `<pages><page name="stories"><title>Stories</title><author>me</author></page></pages>`,
			want:   []Node{{Name: "stories"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := tt.decoder.Decode(tt.entity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, normalize(tt.want), normalize(nodes))
		})
	}
}

func TestXWikiDecoder(t *testing.T) {
	tests := []struct {
		name    string
		entity  string
		want    []Node
		wantErr error
	}{
		{
			name: "listed parent nests its children",
			entity: `{"pageSummaries": [
				{"name": "stories", "parent": "Main.WebHome"},
				{"name": "a_story", "parent": "Main.stories"},
				{"name": "a_nested_story", "parent": "xwiki:Main.a_story"}
			]}`,
			want: []Node{{Name: "Main", Group: true, Children: []Node{
				{Name: "stories", Children: []Node{
					{Name: "a_story", Children: []Node{{Name: "a_nested_story"}}},
				}},
			}}},
		},
		{
			name: "nested page parents",
			entity: `{"pageSummaries": [
				{"name": "a_story", "parent": "Main.stories.WebHome"},
				{"name": "another_story", "parent": "xwiki:Main.stories.WebHome"}
			]}`,
			want: []Node{{Name: "stories", Group: true, Children: []Node{
				{Name: "a_story"}, {Name: "another_story"},
			}}},
		},
		{
			name:   "names are trimmed",
			entity: `[{"name": " a_story "}]`,
			want:   []Node{{Name: "a_story"}},
		},
		{
			name:    "blank name",
			entity:  `[{"name": "  "}]`,
			wantErr: ErrMissingName,
		},
		{
			name: "pages without parent are top level",
			entity: `[
				{"name": "a", "parent": ""},
				{"name": "b"},
				{"name": "c", "parent": "Main.c"}
			]`,
			want: []Node{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		},
		{
			name: "groups keep first appearance order",
			entity: `{"pageSummaries": [
				{"name": "one", "parent": "Main.stories"},
				{"name": "home"},
				{"name": "two", "parent": "Main.stories"}
			]}`,
			want: []Node{
				{Name: "stories", Group: true, Children: []Node{{Name: "one"}, {Name: "two"}}},
				{Name: "home"},
			},
		},
		{
			name:    "missing name",
			entity:  `{"pageSummaries": [{"parent": "Main.stories"}]}`,
			wantErr: ErrMissingName,
		},
		{
			name:    "summary not an object",
			entity:  `{"pageSummaries": ["a_story"]}`,
			wantErr: ErrUnsupported,
		},
		{
			name: "parent cycle",
			entity: `{"pageSummaries": [
				{"name": "a", "parent": "Main.b"},
				{"name": "b", "parent": "Main.a"}
			]}`,
			wantErr: ErrUnsupported,
		},
		{
			name:    "malformed",
			entity:  `{"pageSummaries": [`,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := XWikiDecoder{}.Decode(tt.entity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, normalize(tt.want), normalize(nodes))
		})
	}
}

func TestParentPage(t *testing.T) {
	assert.Equal(t, "stories", parentPage("Main.stories"))
	assert.Equal(t, "stories", parentPage("xwiki:Main.stories"))
	assert.Equal(t, "stories", parentPage("stories"))
	assert.Equal(t, "stories", parentPage("Main.stories.WebHome"))
	assert.Equal(t, "stories", parentPage("xwiki:Main.stories.WebHome"))
	assert.Equal(t, "Main", parentPage("Main.WebHome"))
	assert.Equal(t, "WebHome", parentPage("WebHome"))
	assert.Equal(t, "", parentPage("  "))
}

func TestDecoderFor(t *testing.T) {
	tests := []struct {
		format  string
		want    Decoder
		wantErr bool
	}{
		{format: "json", want: JSONDecoder{NameKey: "id", ChildrenKey: "kids"}},
		{format: "", want: JSONDecoder{NameKey: "id", ChildrenKey: "kids"}},
		{format: "XML", want: XMLDecoder{NameKey: "id", ChildrenKey: "kids"}},
		{format: "yml", want: YAMLDecoder{NameKey: "id", ChildrenKey: "kids"}},
		{format: "xwiki", want: XWikiDecoder{}},
		{format: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			d, err := DecoderFor(tt.format, "id", "kids")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}
