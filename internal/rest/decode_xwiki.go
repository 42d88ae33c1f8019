package rest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// XWikiDecoder decodes the page listing returned by the XWiki REST API for
// .../spaces/{space}/pages?media=json. Pages reference their parent instead
// of nesting, so the tree is assembled from the parent references:
//
//   - a page whose parent is another listed page becomes its child;
//   - a page whose parent is not listed is grouped under a Group node named
//     after the parent page, so "Main.stories" yields the breadcrumb /stories;
//     a nested page parent such as "Main.stories.WebHome" is named stories too;
//   - a page with no parent is a top-level node.
type XWikiDecoder struct{}

type pageSummary struct {
	Name   *string `json:"name"`
	Parent string  `json:"parent"`
}

type pageListing struct {
	PageSummaries []json.RawMessage `json:"pageSummaries"`
}

// Decode implements Decoder.
func (XWikiDecoder) Decode(entity string) ([]Node, error) {
	raw, err := rawSummaries(entity)
	if err != nil {
		return nil, err
	}

	pages := make([]pageSummary, len(raw))
	for i, r := range raw {
		path := fmt.Sprintf("pageSummaries[%d]", i)
		if err := json.Unmarshal(r, &pages[i]); err != nil {
			return nil, decodeErr(path, fmt.Errorf("%w: %v", ErrUnsupported, err))
		}
		if pages[i].Name == nil {
			return nil, decodeErr(path, ErrMissingName)
		}
		name := cleanName(*pages[i].Name)
		if name == "" {
			return nil, decodeErr(path, ErrMissingName)
		}
		pages[i].Name = &name
	}
	return buildPageTree(pages)
}

func rawSummaries(entity string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(entity)
	if strings.HasPrefix(trimmed, "[") {
		var list []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, decodeErr("", fmt.Errorf("%w: %v", ErrMalformed, err))
		}
		return list, nil
	}

	var listing pageListing
	if err := json.Unmarshal([]byte(trimmed), &listing); err != nil {
		return nil, decodeErr("", fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	return listing.PageSummaries, nil
}

// webHome is the page holding the content of a nested XWiki page.
const webHome = "WebHome"

// parentPage strips the wiki and space parts of a page reference:
// "xwiki:Main.stories", "Main.stories" and "Main.stories.WebHome" all give
// "stories".
func parentPage(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		ref = ref[i+1:]
	}
	ref = strings.TrimSuffix(ref, "."+webHome)
	if i := strings.LastIndex(ref, "."); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}

func buildPageTree(pages []pageSummary) ([]Node, error) {
	listed := make(map[string]int, len(pages))
	for i, p := range pages {
		if _, ok := listed[*p.Name]; !ok {
			listed[*p.Name] = i
		}
	}

	const top = -1
	childrenOf := make(map[int][]int)
	groups := make(map[string][]int)
	// Top-level entries in order of first appearance: either a page index or
	// the name of a group of pages sharing an unlisted parent.
	type entry struct {
		page  int
		group string
	}
	var roots []entry

	for i, p := range pages {
		parent := parentPage(p.Parent)
		switch idx, ok := listed[parent]; {
		case parent == "" || parent == *p.Name:
			roots = append(roots, entry{page: i})
		case ok:
			childrenOf[idx] = append(childrenOf[idx], i)
		default:
			if _, seen := groups[parent]; !seen {
				roots = append(roots, entry{page: top, group: parent})
			}
			groups[parent] = append(groups[parent], i)
		}
	}

	reached := make([]bool, len(pages))
	var build func(i int) Node
	build = func(i int) Node {
		reached[i] = true
		n := Node{Name: *pages[i].Name}
		for _, c := range childrenOf[i] {
			n.Children = append(n.Children, build(c))
		}
		return n
	}

	out := make([]Node, 0, len(roots))
	for _, r := range roots {
		if r.page != top {
			out = append(out, build(r.page))
			continue
		}
		g := Node{Name: r.group, Group: true}
		for _, c := range groups[r.group] {
			g.Children = append(g.Children, build(c))
		}
		out = append(out, g)
	}

	// Pages never reached only reference each other.
	for i, ok := range reached {
		if !ok {
			return nil, decodeErr(fmt.Sprintf("pageSummaries[%d]", i),
				fmt.Errorf("%w: parent cycle through %q", ErrUnsupported, *pages[i].Name))
		}
	}
	return out, nil
}
