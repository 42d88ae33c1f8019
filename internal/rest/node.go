package rest

import (
	"fmt"
	"strings"
)

// Node is one page of a decoded hierarchy document.
type Node struct {
	Name     string
	Children []Node
	// Group marks a node that only contributes a breadcrumb segment to its
	// children and is not indexed itself.
	Group bool
}

// Decoder turns a serialized hierarchy document into its top-level nodes.
// Every decoder trims surrounding whitespace from node names; a name that is
// empty after trimming is ErrMissingName.
type Decoder interface {
	Decode(entity string) ([]Node, error)
}

const (
	// DefaultNameKey is the field holding a node's identifier.
	DefaultNameKey = "name"
	// DefaultChildrenKey is the field holding a node's child nodes.
	DefaultChildrenKey = "children"
)

// Format names accepted by DecoderFor.
const (
	FormatJSON  = "json"
	FormatXML   = "xml"
	FormatYAML  = "yaml"
	FormatXWiki = "xwiki"
)

// DecoderFor returns the decoder registered under format. Empty keys fall
// back to DefaultNameKey and DefaultChildrenKey.
func DecoderFor(format, nameKey, childrenKey string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		return JSONDecoder{NameKey: nameKey, ChildrenKey: childrenKey}, nil
	case FormatXML:
		return XMLDecoder{NameKey: nameKey, ChildrenKey: childrenKey}, nil
	case FormatYAML, "yml":
		return YAMLDecoder{NameKey: nameKey, ChildrenKey: childrenKey}, nil
	case FormatXWiki:
		return XWikiDecoder{}, nil
	default:
		return nil, fmt.Errorf("unknown hierarchy format %q", format)
	}
}

// treeShape reads nodes out of a generic map/slice tree as produced by the
// JSON and YAML parsers.
type treeShape struct {
	nameKey     string
	childrenKey string
}

func newTreeShape(nameKey, childrenKey string) treeShape {
	if nameKey == "" {
		nameKey = DefaultNameKey
	}
	if childrenKey == "" {
		childrenKey = DefaultChildrenKey
	}
	return treeShape{nameKey: nameKey, childrenKey: childrenKey}
}

// roots interprets the top-level value. It may be a list of nodes, a
// container object carrying only the children key, a single node, or an
// empty document.
func (s treeShape) roots(v any) ([]Node, error) {
	switch top := v.(type) {
	case nil:
		return []Node{}, nil
	case []any:
		return s.nodes("", top)
	case map[string]any:
		if len(top) == 0 {
			return []Node{}, nil
		}
		if _, named := top[s.nameKey]; !named {
			children, ok := top[s.childrenKey]
			if !ok {
				return nil, decodeErr("", ErrMissingName)
			}
			return s.children(s.childrenKey, children)
		}
		n, err := s.node("", top)
		if err != nil {
			return nil, err
		}
		return []Node{n}, nil
	default:
		return nil, decodeErr("", fmt.Errorf("%w: top level is %T", ErrUnsupported, v))
	}
}

func (s treeShape) nodes(path string, items []any) ([]Node, error) {
	out := make([]Node, 0, len(items))
	for i, item := range items {
		n, err := s.node(fmt.Sprintf("%s[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s treeShape) children(path string, v any) ([]Node, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return s.nodes(path, c)
	default:
		return nil, decodeErr(path, fmt.Errorf("%w: %s is %T, want a list", ErrUnsupported, s.childrenKey, v))
	}
}

func (s treeShape) node(path string, v any) (Node, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return Node{}, decodeErr(path, fmt.Errorf("%w: node is %T", ErrUnsupported, v))
	}

	raw, ok := fields[s.nameKey]
	if !ok || raw == nil {
		return Node{}, decodeErr(path, ErrMissingName)
	}
	name, ok := raw.(string)
	if !ok {
		return Node{}, decodeErr(path, fmt.Errorf("%w: %s is %T", ErrUnsupported, s.nameKey, raw))
	}
	if name = cleanName(name); name == "" {
		return Node{}, decodeErr(path, ErrMissingName)
	}

	children, err := s.children(joinPath(path, s.childrenKey), fields[s.childrenKey])
	if err != nil {
		return Node{}, err
	}
	return Node{Name: name, Children: children}, nil
}

func cleanName(name string) string {
	return strings.TrimSpace(name)
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
