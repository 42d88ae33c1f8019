package rest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultNodeElement is the XML element name of a page node.
const DefaultNodeElement = "page"

// XMLDecoder decodes an XML hierarchy. Node elements carry their name either
// as an attribute or as a child element; child nodes are nested node
// elements, optionally wrapped in a children element. Other elements inside
// a node element are fields of that node and ignored; inside the document
// root or a children element they are an ErrUnsupported decode error.
//
//	<pages>
//	  <page name="stories">
//	    <children><page><name>a_story</name></page></children>
//	  </page>
//	</pages>
type XMLDecoder struct {
	NodeElement string
	NameKey     string
	ChildrenKey string
}

type xmlElement struct {
	name     string
	attrs    map[string]string
	text     strings.Builder
	children []*xmlElement
}

// Decode implements Decoder.
func (d XMLDecoder) Decode(entity string) ([]Node, error) {
	root, err := parseXML(entity)
	if err != nil {
		return nil, decodeErr("", fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	if root == nil {
		return []Node{}, nil
	}

	if root.name == d.nodeElement() {
		n, err := d.node(root.name, root)
		if err != nil {
			return nil, err
		}
		return []Node{n}, nil
	}
	nodes, err := d.nodes(root.name, root, true)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return nodes, nil
}

func (d XMLDecoder) nodeElement() string {
	if d.NodeElement == "" {
		return DefaultNodeElement
	}
	return d.NodeElement
}

func (d XMLDecoder) nameKey() string {
	if d.NameKey == "" {
		return DefaultNameKey
	}
	return d.NameKey
}

func (d XMLDecoder) childrenKey() string {
	if d.ChildrenKey == "" {
		return DefaultChildrenKey
	}
	return d.ChildrenKey
}

// nodes collects the node elements directly under el, descending into
// children wrappers. In a container only node and children elements may
// appear.
func (d XMLDecoder) nodes(path string, el *xmlElement, container bool) ([]Node, error) {
	var out []Node
	for i, c := range el.children {
		childPath := fmt.Sprintf("%s/%s[%d]", path, c.name, i)
		switch c.name {
		case d.nodeElement():
			n, err := d.node(childPath, c)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		case d.childrenKey():
			nested, err := d.nodes(childPath, c, true)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			if container {
				return nil, decodeErr(childPath, fmt.Errorf("%w: unexpected element %s", ErrUnsupported, c.name))
			}
		}
	}
	return out, nil
}

func (d XMLDecoder) node(path string, el *xmlElement) (Node, error) {
	name, ok := el.attrs[d.nameKey()]
	if !ok {
		for _, c := range el.children {
			if c.name != d.nameKey() {
				continue
			}
			if len(c.children) > 0 {
				return Node{}, decodeErr(path, fmt.Errorf("%w: %s has nested elements", ErrUnsupported, d.nameKey()))
			}
			name = c.text.String()
			break
		}
	}
	name = cleanName(name)
	if name == "" {
		return Node{}, decodeErr(path, ErrMissingName)
	}

	children, err := d.nodes(path, el, false)
	if err != nil {
		return Node{}, err
	}
	return Node{Name: name, Children: children}, nil
}

// parseXML builds an element tree from the document. A document with no
// root element yields nil.
func parseXML(entity string) (*xmlElement, error) {
	dec := xml.NewDecoder(strings.NewReader(entity))
	var (
		root  *xmlElement
		stack []*xmlElement
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &xmlElement{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if len(stack) > 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}
