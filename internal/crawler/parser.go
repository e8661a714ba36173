package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseResult is what the parser extracts from one HTML document.
type ParseResult struct {
	// Title is the text of the first <title> element.
	Title string

	// Hrefs are the raw href attribute values of every <a> element with an
	// href, in document order. Values are not resolved or deduplicated.
	Hrefs []string
}

// Parser extracts links from HTML. It tolerates malformed markup the way
// browsers do.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads an HTML document from content.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{Hrefs: make([]string, 0)}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			p.processElement(n, result)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// Hrefs is a shortcut for Parse(content).Hrefs.
func (p *Parser) Hrefs(content io.Reader) ([]string, error) {
	res, err := p.Parse(content)
	if err != nil {
		return nil, err
	}
	return res.Hrefs, nil
}

func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}
	case "a":
		// An empty href still refers to the current document.
		if href, ok := getAttr(n, "href"); ok {
			result.Hrefs = append(result.Hrefs, href)
		}
	}
}

// getAttr returns the value of the named attribute and whether it is present.
func getAttr(n *html.Node, name string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}
