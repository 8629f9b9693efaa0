package response

import (
	"bytes"
	"encoding/xml"
	"io"
)

// Element is a minimal XML DOM node: just enough structure for the
// getconfig XML callback (spec.md §4.5) to walk children by name and read
// a member's text content, without committing to a fixed Go struct schema
// (the root element's shape is caller-defined, per spec.md §4.2: "If ...
// root is any other element, pass the root to a caller-supplied XML
// callback").
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element
	Text     string
}

// Attr returns the value of the named attribute, and whether it was set.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Child returns the first direct child element with the given name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildText returns the text content of the first direct child named name.
func (e *Element) ChildText(name string) (string, bool) {
	c := e.Child(name)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

// parseXML decodes body into a tree of *Element rooted at the document
// element. It returns an error if body is not well-formed XML.
func parseXML(body []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var stack []*Element
	var root *Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				el.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}
