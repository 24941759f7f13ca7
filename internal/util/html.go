package util

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText flattens an HTML fragment into plain text. Job boards return
// descriptions as markup; scoring and tailoring want raw words. Input that
// fails to parse is returned as-is.
func HTMLToText(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return strings.TrimSpace(fragment)
	}

	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br", "p", "li", "div", "tr", "h1", "h2", "h3", "h4":
				b.WriteString("\n")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)

	return strings.TrimSpace(collapseSpaces(b.String()))
}

func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
