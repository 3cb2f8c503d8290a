package parser

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/cbsl-assistant/models"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// skipTags never contribute visible text.
var skipTags = map[string]struct{}{
	"head":     {},
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"svg":      {},
	"iframe":   {},
}

// Site chrome selectors. header and footer are chrome only outside main and
// article.
const (
	chromeSelector  = "nav, aside, [role=navigation], [role=banner], [role=contentinfo]"
	framingSelector = "header, footer"
	contentSelector = "main, article"
)

type Parser struct{}

// Parse reduces an HTML page to whitespace-normalized plain text using the
// requested extraction mode.
func (p *Parser) Parse(req models.ParseRequest) (string, error) {
	if req.Mode == models.ExtractModeReadability {
		text, err := p.parseReadable(req.URL, req.HTML)
		if err == nil && text != "" {
			return text, nil
		}
		// no article found: fall through to full body text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return DocumentText(doc), nil
}

// parseReadable lets go-readability find the main content and then extracts
// its text.
func (p *Parser) parseReadable(rawURL, rawHTML string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	readabilityParser := readability.NewParser()
	article, err := readabilityParser.Parse(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", err
	}
	return DocumentText(doc), nil
}

// DocumentText returns the visible text of doc with text nodes separated by
// single spaces. Site chrome is removed from doc first.
func DocumentText(doc *goquery.Document) string {
	removeChrome(doc)

	var sb strings.Builder
	for _, n := range doc.Nodes {
		collectText(n, &sb)
	}
	return normalizeText(sb.String())
}

func removeChrome(doc *goquery.Document) {
	doc.Find(chromeSelector).Remove()
	doc.Find(framingSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest(contentSelector).Length() == 0
	}).Remove()
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteString(" ")
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if _, skip := skipTags[n.Data]; skip {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// normalizeText trims every line, drops blank ones and collapses all runs of
// whitespace to a single space.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), len(input)+1)
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
