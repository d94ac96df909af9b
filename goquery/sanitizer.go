// Package goquery implements jobqc.Sanitizer on top of goquery and the
// golang.org/x/net/html parser.
package goquery

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/jobqc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Sanitizer implements jobqc.Sanitizer at compile time.
var _ jobqc.Sanitizer = (*Sanitizer)(nil)

// allowedTags are the only elements that survive sanitization.
var allowedTags = map[atom.Atom]bool{
	atom.H1: true,
	atom.H2: true,
	atom.H3: true,
	atom.H4: true,
	atom.H5: true,
	atom.H6: true,
	atom.P:  true,
	atom.Ul: true,
	atom.Ol: true,
	atom.Li: true,
}

// textOnlyTags are elements whose content the parser keeps as a single
// text node. Their text is parsed again as markup when they are unwrapped.
// Script and style bodies stay text.
var textOnlyTags = map[atom.Atom]bool{
	atom.Iframe:    true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Noscript:  true,
	atom.Plaintext: true,
	atom.Textarea:  true,
	atom.Title:     true,
	atom.Xmp:       true,
}

// maxPasses bounds the re-parse loop in Sanitize. Output usually settles
// after the second pass.
const maxPasses = 8

// Sanitizer reduces HTML fragments to headings, paragraphs and lists.
type Sanitizer struct{}

// NewSanitizer creates a new Sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize parses markup as a body fragment, unwraps every element that is
// not allowed and strips all attributes. Comments are dropped.
//
// Unwrapping can leave nestings the parser would rebuild differently
// (e.g. <li> directly inside <li>), so the result is re-parsed until it no
// longer changes.
func (s *Sanitizer) Sanitize(markup string) (string, error) {
	out, err := sanitizeOnce(markup)
	if err != nil {
		return "", err
	}
	for i := 1; i < maxPasses; i++ {
		next, err := sanitizeOnce(out)
		if err != nil {
			return "", err
		}
		if next == out {
			break
		}
		out = next
	}
	return out, nil
}

// PlainText returns the text nodes of markup concatenated in document order.
func (s *Sanitizer) PlainText(markup string) (string, error) {
	root, err := parseFragment(markup)
	if err != nil {
		return "", err
	}
	return goquery.NewDocumentFromNode(root).Text(), nil
}

func sanitizeOnce(markup string) (string, error) {
	root, err := parseFragment(markup)
	if err != nil {
		return "", err
	}

	if err := sanitizeTree(root); err != nil {
		return "", err
	}
	return renderChildren(root)
}

func sanitizeTree(root *html.Node) error {
	removeComments(root)

	// Find returns descendants in document order; walking it backwards
	// visits every child before its parent.
	elems := goquery.NewDocumentFromNode(root).Find("*")
	for i := elems.Length() - 1; i >= 0; i-- {
		n := elems.Get(i)
		if n.Namespace != "" {
			unwrap(n)
			continue
		}
		if allowedTags[n.DataAtom] {
			n.Attr = nil
			continue
		}
		if textOnlyTags[n.DataAtom] {
			if err := expandText(n); err != nil {
				return err
			}
		}
		unwrap(n)
	}
	return nil
}

// expandText replaces the text children of n with their sanitized parse.
func expandText(n *html.Node) error {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			frag, err := parseFragment(c.Data)
			if err != nil {
				return err
			}
			if err := sanitizeTree(frag); err != nil {
				return err
			}
			for f := frag.FirstChild; f != nil; f = frag.FirstChild {
				frag.RemoveChild(f)
				n.InsertBefore(f, c)
			}
			n.RemoveChild(c)
		}
		c = next
	}
	return nil
}

// parseFragment parses markup in a <body> context with scripting disabled
// and returns a detached container holding the resulting nodes.
func parseFragment(markup string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragmentWithOptions(strings.NewReader(markup), body, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, jobqc.Errorf(jobqc.EINVALID, "failed to parse HTML: %v", err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.CommentNode, html.DoctypeNode:
			n.RemoveChild(c)
		case html.ElementNode:
			removeComments(c)
		}
		c = next
	}
}

func renderChildren(root *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
