package htmldoc

import (
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "label": true,
	"legend": true, "li": true, "main": true, "nav": true, "ol": true, "option": true,
	"p": true, "section": true, "table": true, "tr": true, "ul": true,
}

// innerText renders the visible text of n, one line per block element,
// with runs of whitespace collapsed and blank lines dropped
func innerText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
			return
		case html.ElementNode:
			if cur != n && !visible(cur) {
				return
			}
			if cur.Data == "br" {
				b.WriteByte('\n')
				return
			}
		}
		block := cur.Type == html.ElementNode && blockTags[cur.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	walk(n)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
