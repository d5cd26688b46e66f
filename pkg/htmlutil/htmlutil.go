// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package htmlutil holds small helpers for working with golang.org/x/net/html trees.
package htmlutil

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/net/html"
)

func VisitHTML(node *html.Node, before, after func(*html.Node) error) error {
	if before != nil {
		if err := before(node); err != nil {
			return err
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := VisitHTML(child, before, after); err != nil {
			return err
		}
	}
	if after != nil {
		if err := after(node); err != nil {
			return err
		}
	}
	return nil
}

func GetAttr(node *html.Node, namespace, name string) (val string, ok bool) {
	if node == nil {
		return "", false
	}
	for _, attr := range node.Attr {
		if attr.Namespace == namespace && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr sets an un-namespaced attribute, adding it if it isn't already present.
func SetAttr(node *html.Node, name, val string) {
	for i := range node.Attr {
		if node.Attr[i].Namespace == "" && node.Attr[i].Key == name {
			node.Attr[i].Val = val
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: name, Val: val})
}

// RemoveAttr removes an un-namespaced attribute, if present.
func RemoveAttr(node *html.Node, name string) {
	attrs := node.Attr[:0]
	for _, attr := range node.Attr {
		if attr.Namespace == "" && attr.Key == name {
			continue
		}
		attrs = append(attrs, attr)
	}
	node.Attr = attrs
}

func HasClass(node *html.Node, class string) bool {
	val, _ := GetAttr(node, "", "class")
	for _, field := range strings.Fields(val) {
		if field == class {
			return true
		}
	}
	return false
}

// Matcher is a predicate over nodes.
type Matcher func(*html.Node) bool

// Element matches element nodes with the given tag name.
func Element(tag string) Matcher {
	return func(node *html.Node) bool {
		return node.Type == html.ElementNode && node.Data == tag
	}
}

// ElementWithClass matches element nodes with the given tag name and CSS class.  An empty tag
// matches any element.
func ElementWithClass(tag, class string) Matcher {
	return func(node *html.Node) bool {
		return node.Type == html.ElementNode &&
			(tag == "" || node.Data == tag) &&
			HasClass(node, class)
	}
}

// ElementWithID matches the element node with the given id attribute.
func ElementWithID(id string) Matcher {
	return func(node *html.Node) bool {
		if node.Type != html.ElementNode {
			return false
		}
		val, ok := GetAttr(node, "", "id")
		return ok && val == id
	}
}

var errStop = errors.New("stop")

// Find returns the first node under root (root included) in document order that matches, or nil.
func Find(root *html.Node, match Matcher) *html.Node {
	var ret *html.Node
	_ = VisitHTML(root, func(node *html.Node) error {
		if match(node) {
			ret = node
			return errStop
		}
		return nil
	}, nil)
	return ret
}

// FindAll returns every node under root (root included) that matches, in document order.
func FindAll(root *html.Node, match Matcher) []*html.Node {
	var ret []*html.Node
	_ = VisitHTML(root, func(node *html.Node) error {
		if match(node) {
			ret = append(ret, node)
		}
		return nil
	}, nil)
	return ret
}

// Text returns the concatenated text content of node.
func Text(node *html.Node) string {
	var text strings.Builder
	_ = VisitHTML(node, nil, func(child *html.Node) error {
		if child.Type == html.TextNode {
			text.WriteString(child.Data)
		}
		return nil
	})
	return text.String()
}

// SetText replaces all of node's children with a single text node.
func SetText(node *html.Node, text string) {
	for node.FirstChild != nil {
		node.RemoveChild(node.FirstChild)
	}
	node.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: text,
	})
}

// Clone returns a deep copy of node, detached from any parent or siblings.
func Clone(node *html.Node) *html.Node {
	ret := &html.Node{
		Type:      node.Type,
		DataAtom:  node.DataAtom,
		Data:      node.Data,
		Namespace: node.Namespace,
	}
	if node.Attr != nil {
		ret.Attr = make([]html.Attribute, len(node.Attr))
		copy(ret.Attr, node.Attr)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		ret.AppendChild(Clone(child))
	}
	return ret
}

func Parse(content []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(content))
}

func Render(node *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
