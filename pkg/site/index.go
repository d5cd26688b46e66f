package site

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/datawire/pyindex/pkg/htmlutil"
	"github.com/datawire/pyindex/pkg/python/pep503"
)

const indexDoc = "global index"

// Card is the global index's summary of one listing.
type Card struct {
	// Name is the package name as registered (not normalized).
	Name        string
	Version     string
	Description string
}

// Index is a parsed global index page.  Its methods never modify the receiver; the With*
// methods return a modified copy.
type Index struct {
	root *html.Node
}

func ParseIndex(content []byte) (*Index, error) {
	root, err := htmlutil.Parse(content)
	if err != nil {
		return nil, err
	}
	return &Index{root: root}, nil
}

func (idx *Index) Render() ([]byte, error) {
	return htmlutil.Render(idx.root)
}

func (idx *Index) clone() *Index {
	return &Index{root: htmlutil.Clone(idx.root)}
}

func cardHRef(normName string) string {
	return normName + "/"
}

// cardName returns the listing name shown on a card: either the text of its <h3>, or the text
// sitting directly inside the <a class="card">.
func cardName(node *html.Node) string {
	if h3 := htmlutil.Find(node, htmlutil.Element("h3")); h3 != nil {
		return strings.TrimSpace(htmlutil.Text(h3))
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			if text := strings.TrimSpace(child.Data); text != "" {
				return text
			}
		}
	}
	return ""
}

func (idx *Index) findCard(normName string) *html.Node {
	return htmlutil.Find(idx.root, func(node *html.Node) bool {
		if !htmlutil.ElementWithClass("a", "card")(node) {
			return false
		}
		if href, ok := htmlutil.GetAttr(node, "", "href"); ok &&
			strings.TrimSuffix(href, "/") == normName {
			return true
		}
		name := cardName(node)
		return name != "" && pep503.NormalizeName(name) == normName
	})
}

// Has reports whether a listing with the given normalized name is present.
func (idx *Index) Has(normName string) bool {
	return idx.findCard(normName) != nil
}

// Card returns the card for a listing.
func (idx *Index) Card(normName string) (Card, bool) {
	node := idx.findCard(normName)
	if node == nil {
		return Card{}, false
	}
	card := Card{Name: cardName(node)}
	if span := htmlutil.Find(node, htmlutil.ElementWithClass("span", "version")); span != nil {
		card.Version = strings.TrimSpace(htmlutil.Text(span))
	}
	desc := htmlutil.Find(node, htmlutil.Element("p"))
	if desc == nil {
		desc = htmlutil.Find(node, htmlutil.ElementWithClass("span", "description"))
	}
	if desc != nil {
		card.Description = strings.TrimSpace(htmlutil.Text(desc))
	}
	return card, true
}

func textElement(tag atom.Atom, text string, attrs ...html.Attribute) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		DataAtom: tag,
		Data:     tag.String(),
		Attr:     attrs,
	}
	htmlutil.SetText(node, text)
	return node
}

// WithCard returns a copy of the index with a card for the listing added.  The card is appended
// to the element with id="packages"; an index without one gets a card inserted right after its
// <h6 class="text-header"> heading instead, in the flat shape that layout uses.
func (idx *Index) WithCard(card Card) (*Index, error) {
	ret := idx.clone()
	href := cardHRef(pep503.NormalizeName(card.Name))

	if list := htmlutil.Find(ret.root, htmlutil.ElementWithID("packages")); list != nil {
		node := cardElement(href)
		node.AppendChild(textElement(atom.H3, card.Name))
		node.AppendChild(textElement(atom.Span, card.Version, html.Attribute{Key: "class", Val: "version"}))
		node.AppendChild(textElement(atom.P, card.Description))
		list.AppendChild(node)
		return ret, nil
	}

	header := htmlutil.Find(ret.root, htmlutil.ElementWithClass("h6", "text-header"))
	if header == nil || header.Parent == nil {
		return nil, &MalformedError{
			Document: indexDoc,
			Missing:  `element with id="packages" or <h6 class="text-header">`,
		}
	}
	node := cardElement(href)
	node.AppendChild(&html.Node{Type: html.TextNode, Data: card.Name})
	node.AppendChild(textElement(atom.Span, ""))
	node.AppendChild(textElement(atom.Span, card.Version, html.Attribute{Key: "class", Val: "version"}))
	node.AppendChild(&html.Node{Type: html.ElementNode, DataAtom: atom.Br, Data: "br"})
	node.AppendChild(textElement(atom.Span, card.Description, html.Attribute{Key: "class", Val: "description"}))
	header.Parent.InsertBefore(node, header.NextSibling)
	return ret, nil
}

func cardElement(href string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.A,
		Data:     "a",
		Attr: []html.Attribute{
			{Key: "class", Val: "card"},
			{Key: "href", Val: href},
		},
	}
}

// WithVersion returns a copy of the index with the listing's displayed version replaced.
func (idx *Index) WithVersion(normName, version string) (*Index, error) {
	ret := idx.clone()
	node := ret.findCard(normName)
	if node == nil {
		return nil, &MalformedError{Document: indexDoc, Missing: "card for " + normName}
	}
	span := htmlutil.Find(node, htmlutil.ElementWithClass("span", "version"))
	if span == nil {
		return nil, &MalformedError{Document: indexDoc, Missing: `<span class="version"> in card for ` + normName}
	}
	htmlutil.SetText(span, version)
	return ret, nil
}

// WithoutCard returns a copy of the index with the listing's card removed.
func (idx *Index) WithoutCard(normName string) (*Index, error) {
	ret := idx.clone()
	node := ret.findCard(normName)
	if node == nil {
		return nil, &MalformedError{Document: indexDoc, Missing: "card for " + normName}
	}
	node.Parent.RemoveChild(node)
	return ret, nil
}
