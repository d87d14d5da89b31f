package naukri

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tags kept verbatim in sanitized description fragments. Everything else
// is either dropped with its subtree or unwrapped around its children.
var allowedTags = map[string]bool{
	"p": true, "ul": true, "ol": true, "li": true, "br": true,
	"em": true, "strong": true, "i": true, "b": true, "u": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"a": true,
}

// Tags removed together with their entire subtree.
var droppedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"img": true, "picture": true, "svg": true, "canvas": true,
	"video": true, "audio": true, "object": true, "embed": true,
	"form": true, "input": true, "button": true, "select": true,
	"textarea": true, "nav": true, "header": true, "footer": true,
}

// Attributes kept per allowed tag. Only anchors retain anything.
var allowedAttrs = map[string]map[string]bool{
	"a": {"href": true},
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// maxSectionHTML is the ceiling above which a selector match is assumed
// to have captured page scaffold rather than a description section.
const maxSectionHTML = 200_000

// SanitizeFragment reduces arbitrary HTML to the allow-listed subset:
// formatting and structure tags survive with filtered attributes, risky
// subtrees are dropped, unknown wrappers are unwrapped, and elements
// left without any text are removed. Running the output through the
// sanitizer again is a no-op.
func SanitizeFragment(fragment string) string {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, n := range nodes {
		for _, clean := range sanitizeNode(n) {
			if err := html.Render(&sb, clean); err != nil {
				return ""
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// sanitizeNode rebuilds a node into zero or more clean nodes. Rebuilding
// (rather than mutating) keeps parent pointers consistent for rendering.
func sanitizeNode(n *html.Node) []*html.Node {
	switch n.Type {
	case html.TextNode:
		return []*html.Node{{Type: html.TextNode, Data: n.Data}}
	case html.ElementNode:
		// handled below
	default:
		return nil
	}

	tag := strings.ToLower(n.Data)
	if droppedTags[tag] {
		return nil
	}

	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, sanitizeNode(c)...)
	}

	if !allowedTags[tag] {
		// Unknown tag: splice its cleaned children into the parent.
		return children
	}

	if tag == "br" {
		return []*html.Node{{Type: html.ElementNode, Data: "br", DataAtom: atom.Br}}
	}

	if !nodesHaveText(children) {
		return nil
	}

	clean := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for _, attr := range n.Attr {
		if allowedAttrs[tag][strings.ToLower(attr.Key)] {
			clean.Attr = append(clean.Attr, html.Attribute{Key: strings.ToLower(attr.Key), Val: attr.Val})
		}
	}
	for _, c := range children {
		clean.AppendChild(c)
	}
	return []*html.Node{clean}
}

func nodesHaveText(nodes []*html.Node) bool {
	for _, n := range nodes {
		if nodeHasText(n) {
			return true
		}
	}
	return false
}

func nodeHasText(n *html.Node) bool {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data) != ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if nodeHasText(c) {
			return true
		}
	}
	return false
}

// ReadableText flattens sanitized HTML into plain text: headings and
// paragraphs become lines, list items get a "- " prefix, and runs of
// blank lines collapse to a single blank line. When no block structure
// exists the whole fragment's text is returned.
func ReadableText(sanitized string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return ""
	}

	var lines []string
	blocks := doc.Find("h1, h2, h3, h4, h5, h6, p, li")
	blocks.Each(func(_ int, block *goquery.Selection) {
		text := cleanText(block.Text())
		if text == "" {
			return
		}
		if goquery.NodeName(block) == "li" {
			text = "- " + text
		}
		lines = append(lines, text)
	})

	var out string
	if len(lines) > 0 {
		out = strings.Join(lines, "\n")
	} else {
		out = cleanBlockText(doc.Text())
	}

	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// cleanBlockText trims each line while preserving line structure.
func cleanBlockText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = cleanText(line)
	}
	return strings.Join(lines, "\n")
}

// ExtractCleanSection runs the selector cascade against a full page and
// returns the first match that survives sanitization and quality checks:
// enough raw text, no bundle-metadata echo, not an interstitial page.
func ExtractCleanSection(doc *goquery.Document, selectors []string, minTextLen int) (string, string) {
	for _, selector := range selectors {
		match := doc.Find(selector).First()
		if match.Length() == 0 {
			continue
		}

		raw, err := goquery.OuterHtml(match)
		if err != nil || len(cleanText(match.Text())) < minTextLen {
			continue
		}
		if len(raw) > maxSectionHTML || containsBundleMarker(raw) {
			continue
		}

		sanitized := SanitizeFragment(raw)
		if sanitized == "" {
			continue
		}

		text := ReadableText(sanitized)
		if text == "" || matchesAny(text, interstitialPhrases) {
			continue
		}

		return sanitized, text
	}
	return "", ""
}
