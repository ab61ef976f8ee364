package catalog

import (
	"strings"

	"golang.org/x/net/html"

	"courselens/internal/textutil"
)

// ExtractEchoEmbeds scans page HTML for iframe embeds that look like Echo360
// players (direct echo360.org sources or LMS external-tool retrieve URLs) and
// returns their noise-stripped titles. Iframes without a title attribute are
// skipped: there is nothing to match on.
func ExtractEchoEmbeds(body string) []string {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var titles []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "iframe" {
			src := attr(n, "src")
			title := strings.TrimSpace(attr(n, "title"))
			if title != "" && (strings.Contains(src, "echo360.org") || strings.Contains(src, "external_tools/retrieve")) {
				if cleaned := textutil.StripNoiseTail(title); cleaned != "" {
					titles = append(titles, cleaned)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return titles
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
