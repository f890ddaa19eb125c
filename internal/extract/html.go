package extract

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/pagewatch/pagewatch/internal/baseline"
)

// FromHTML extracts both payloads from static HTML. It mirrors the live-page
// scripts and backs the --static audit path and tests, where no browser is
// available.
func FromHTML(r io.Reader) (baseline.MetaTagMap, baseline.JSONLDList, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}

	tags := baseline.MetaTagMap{}
	var ldTexts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if key, attrs := metaFromNode(n); key != "" {
					tags[key] = attrs
				}
			case "title":
				tags["title"] = map[string]string{"content": textContent(n)}
			case "link":
				if attr(n, "rel") == "canonical" {
					tags["canonical"] = map[string]string{"rel": "canonical", "content": attr(n, "href")}
				}
			case "script":
				if attr(n, "type") == "application/ld+json" {
					ldTexts = append(ldTexts, textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tags, parseBlocks(ldTexts), nil
}

func metaFromNode(n *html.Node) (string, map[string]string) {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}
	key := attrs["name"]
	if key == "" {
		key = attrs["property"]
	}
	if key == "" {
		key = attrs["http-equiv"]
	}
	return key, attrs
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
