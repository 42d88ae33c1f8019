package rest

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// JSONDecoder decodes a nested JSON hierarchy. Each node is an object with a
// name field and an optional list of child nodes.
type JSONDecoder struct {
	NameKey     string
	ChildrenKey string
}

// Decode implements Decoder.
func (d JSONDecoder) Decode(entity string) ([]Node, error) {
	var v any
	if err := json.Unmarshal([]byte(entity), &v); err != nil {
		return nil, decodeErr("", fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	return newTreeShape(d.NameKey, d.ChildrenKey).roots(v)
}

// YAMLDecoder decodes a nested YAML hierarchy with the same shape as
// JSONDecoder. An empty document has no nodes.
type YAMLDecoder struct {
	NameKey     string
	ChildrenKey string
}

// Decode implements Decoder.
func (d YAMLDecoder) Decode(entity string) ([]Node, error) {
	var v any
	if err := yaml.Unmarshal([]byte(entity), &v); err != nil {
		return nil, decodeErr("", fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	return newTreeShape(d.NameKey, d.ChildrenKey).roots(v)
}
