package tabular

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type node struct {
	name     string
	attrs    []xml.Attr
	text     string
	children []*node
}

func readTree(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		root  *node
		stack []*node
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch tt := tok.(type) {
		case xml.StartElement:
			n := &node{name: tt.Name.Local}
			for _, a := range tt.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.attrs = append(n.attrs, a)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformed)
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				if s := strings.TrimSpace(string(tt)); s != "" {
					top := stack[len(stack)-1]
					if top.text != "" {
						top.text += " "
					}
					top.text += s
				}
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	return root, nil
}

// fromXML flattens the repeated child records of a generic XML document.
// The record container is the first element, searched breadth-first, with
// two or more children of the same name; those children are the records.
// Without one the root element is a single record.
func fromXML(data []byte) (*table, error) {
	root, err := readTree(data)
	if err != nil {
		return nil, err
	}
	t := newTable()
	container, name := recordContainer(root)
	if container == nil {
		r := newRecord()
		flattenNode(root, "", r)
		t.add(r)
		return t, nil
	}
	for _, c := range container.children {
		if c.name != name {
			continue
		}
		r := newRecord()
		flattenNode(c, "", r)
		t.add(r)
	}
	return t, nil
}

func recordContainer(root *node) (*node, string) {
	queue := []*node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		counts := make(map[string]int)
		for _, c := range n.children {
			counts[c.name]++
		}
		for _, c := range n.children {
			if counts[c.name] >= 2 {
				return n, c.name
			}
		}
		queue = append(queue, n.children...)
	}
	return nil, ""
}

// flattenNode writes attributes as "@name" keys and child elements as
// dotted paths. A leaf's text is stored under its path.
func flattenNode(n *node, prefix string, r *record) {
	for _, a := range n.attrs {
		r.set(join(prefix, "@"+a.Name.Local), a.Value)
	}
	if len(n.children) == 0 {
		if n.text != "" || len(n.attrs) == 0 {
			r.set(keyOr(prefix), n.text)
		}
		return
	}
	if n.text != "" {
		r.set(join(prefix, "text"), n.text)
	}
	for _, c := range n.children {
		flattenNode(c, join(prefix, c.name), r)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
