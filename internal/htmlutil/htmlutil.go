// Package htmlutil extracts the readable text of an HTML page so it can be fed
// to the recognizer.
package htmlutil

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/happyhackingspace/ciya/internal/textutil"
)

// LoadHTML parses HTML bytes into a goquery Document.
func LoadHTML(r io.Reader) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(r)
}

// LoadHTMLString parses HTML string into a goquery Document.
func LoadHTMLString(htmlStr string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
}

// hidden elements never contribute text.
var hidden = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Svg:      true,
}

// block elements end the current text block.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Table: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Blockquote: true, atom.Pre: true, atom.Dd: true, atom.Dt: true,
	atom.Caption: true, atom.Figcaption: true, atom.Title: true,
}

// TextBlocks returns the visible text of the selection split at block-level
// elements, with whitespace normalized and empty blocks dropped.
func TextBlocks(root *goquery.Selection) []string {
	var blocks []string
	var buf strings.Builder

	flush := func() {
		text := textutil.CollapseSpace(buf.String())
		if text != "" {
			blocks = append(blocks, text)
		}
		buf.Reset()
	}

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if hidden[n.DataAtom] {
				return
			}
			if _, ok := attr(n, "hidden"); ok {
				return
			}
		}

		isBlock := n.Type == html.ElementNode && block[n.DataAtom]
		if isBlock {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
		if isBlock {
			flush()
		}
	}

	for _, n := range root.Nodes {
		visit(n)
	}
	flush()
	return blocks
}

// VisibleText parses htmlStr and returns its visible text, one block per line.
func VisibleText(htmlStr string) (string, error) {
	doc, err := LoadHTMLString(htmlStr)
	if err != nil {
		return "", err
	}
	return strings.Join(TextBlocks(doc.Selection), "\n"), nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
