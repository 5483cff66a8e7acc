package fhirdoc

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Object is a JSON object that remembers the order its keys were read in.
// Values are *Object, []any, string, json.Number, bool or nil.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores a value, keeping the key's first position on overwrite.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value for key, or nil.
func (o *Object) Get(key string) any {
	if o == nil {
		return nil
	}
	return o.values[key]
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[key]
	return ok
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// decodeJSON decodes a single JSON value, preserving object key order.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil

	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// xmlElement is a namespace-stripped element tree.
type xmlElement struct {
	name     string
	attrs    []xml.Attr
	children []*xmlElement
	text     strings.Builder
}

func (e *xmlElement) attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == name && a.Name.Space != "xmlns" && a.Name.Local != "xmlns" {
			return a.Value, true
		}
	}
	return "", false
}

// decodeXML reads a FHIR XML document into the same shape the JSON decoder
// produces. Elements with a value attribute become scalars, repeated
// children become arrays, and the root element names the resourceType.
func decodeXML(data []byte) (any, error) {
	root, err := readElementTree(data)
	if err != nil {
		return nil, err
	}
	v := elementValue(root)
	if obj, ok := v.(*Object); ok {
		obj.Set("resourceType", root.name)
	}
	return v, nil
}

func readElementTree(data []byte) (*xmlElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false

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
			el := &xmlElement{name: t.Name.Local, attrs: t.Attr}
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
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

func elementValue(el *xmlElement) any {
	if v, ok := el.attr("value"); ok {
		return v
	}

	// A resource wrapper (Bundle.entry.resource, contained) holds exactly
	// one resource element named by its type.
	if (el.name == "resource" || el.name == "contained") && len(el.children) == 1 {
		inner := el.children[0]
		if v, ok := elementValue(inner).(*Object); ok {
			v.Set("resourceType", inner.name)
			return v
		}
	}

	obj := NewObject()
	repeated := make(map[string]bool)
	for _, child := range el.children {
		v := elementValue(child)
		existing, ok := obj.values[child.name]
		switch {
		case !ok:
			obj.Set(child.name, v)
		case repeated[child.name]:
			obj.values[child.name] = append(existing.([]any), v)
		default:
			obj.values[child.name] = []any{existing, v}
			repeated[child.name] = true
		}
	}

	if obj.Len() == 0 {
		if text := strings.TrimSpace(el.text.String()); text != "" {
			return text
		}
		attrs := NewObject()
		for _, a := range el.attrs {
			if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
				continue
			}
			attrs.Set(a.Name.Local, a.Value)
		}
		if attrs.Len() > 0 {
			return attrs
		}
		return ""
	}

	for _, a := range el.attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" || a.Name.Local == "value" {
			continue
		}
		obj.Set(a.Name.Local, a.Value)
	}
	return obj
}
