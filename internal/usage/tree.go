package usage

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// node is a namespace-agnostic XML element. Names are local names only, so
// pudyn:PrinterSubunit and PrinterSubunit compare equal.
type node struct {
	name     string
	attrs    map[string]string
	children []*node
	text     strings.Builder
}

func decodeTree(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		root  *node
		stack []*node
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
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, attr := range t.Attr {
				n.attrs[attr.Name.Local] = attr.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

func (n *node) Text() string {
	return strings.TrimSpace(n.text.String())
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// walk visits n and its descendants in document order until fn returns false.
func (n *node) walk(fn func(*node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// findAll returns every element reached by following path, where path[0]
// may sit at any depth and each later step is a direct child.
func (n *node) findAll(path ...string) []*node {
	if len(path) == 0 {
		return nil
	}
	var out []*node
	n.walk(func(candidate *node) bool {
		if candidate.name != path[0] {
			return true
		}
		out = append(out, candidate.follow(path[1:])...)
		return true
	})
	return out
}

func (n *node) follow(path []string) []*node {
	if len(path) == 0 {
		return []*node{n}
	}
	var out []*node
	for _, c := range n.children {
		if c.name == path[0] {
			out = append(out, c.follow(path[1:])...)
		}
	}
	return out
}
