// Package catalog models the authoritative ordering catalog: the LMS module
// tree whose positions define report ordering and whose item titles are the
// noisy labels the reconciliation engine matches against. Video items are
// recognized either directly (external-tool items pointing at the video
// platform) or by scanning embedded iframes inside page bodies.
package catalog

import (
	"sort"
	"strings"

	"courselens/internal/textutil"
)

// Module is one LMS module with its ordered items, as the API reports it.
type Module struct {
	Name     string       `json:"name"`
	Position int          `json:"position"`
	Items    []ModuleItem `json:"items"`
}

// ModuleItem is one entry inside a module.
type ModuleItem struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Position    int    `json:"position"`
	HTMLURL     string `json:"html_url"`
	ExternalURL string `json:"external_url"`
	PageURL     string `json:"page_url"`
}

// Item is one row of the flattened, ordered catalog. VideoTitle is set only
// for recognized video items and carries the noise-stripped title used for
// matching; Title always keeps the original item label.
type Item struct {
	Module         string
	ModulePosition int
	ItemType       string
	ItemPosition   int
	Title          string
	VideoTitle     string
	HTMLURL        string
	ExternalURL    string
}

// IsVideo reports whether the item was recognized as a video.
func (it Item) IsVideo() bool {
	return it.VideoTitle != ""
}

// IsAssignment reports whether the item maps to a gradebook column.
func (it Item) IsAssignment() bool {
	return strings.Contains(strings.ToLower(it.ItemType), "assignment")
}

// PageFetcher loads a page body by its page URL slug. A nil fetcher or a
// fetch error degrades to "no embeds found"; the page row itself is kept.
type PageFetcher func(pageURL string) (string, error)

// BuildOrder flattens the module tree into ordered catalog items. Modules and
// items are ordered by their position fields; one recognized video embed
// inside a page produces one catalog row per embed.
func BuildOrder(modules []Module, fetchPage PageFetcher) []Item {
	ordered := append([]Module(nil), modules...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	var items []Item
	for _, m := range ordered {
		moduleItems := append([]ModuleItem(nil), m.Items...)
		sort.SliceStable(moduleItems, func(i, j int) bool { return moduleItems[i].Position < moduleItems[j].Position })

		for _, it := range moduleItems {
			base := Item{
				Module:         m.Name,
				ModulePosition: m.Position,
				ItemType:       it.Type,
				ItemPosition:   it.Position,
				Title:          strings.TrimSpace(it.Title),
				HTMLURL:        it.HTMLURL,
				ExternalURL:    it.ExternalURL,
			}

			switch it.Type {
			case "ExternalTool", "ExternalUrl":
				if strings.Contains(it.ExternalURL, "echo360.org") {
					row := base
					row.VideoTitle = textutil.StripNoiseTail(it.Title)
					items = append(items, row)
					continue
				}
			case "Page":
				if embeds := pageEmbeds(it, fetchPage); len(embeds) > 0 {
					for _, title := range embeds {
						row := base
						row.VideoTitle = title
						items = append(items, row)
					}
					continue
				}
			}

			items = append(items, base)
		}
	}
	return items
}

func pageEmbeds(it ModuleItem, fetchPage PageFetcher) []string {
	if fetchPage == nil || it.PageURL == "" {
		return nil
	}
	body, err := fetchPage(it.PageURL)
	if err != nil {
		return nil
	}
	return ExtractEchoEmbeds(body)
}
