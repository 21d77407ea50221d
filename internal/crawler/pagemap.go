package crawler

import "github.com/v0xg/formmap/internal/form"

// PageMap records what one visited page contributed to the crawl
type PageMap struct {
	URL      string         `json:"url"`
	Elements []form.Element `json:"elements"`
	// Links are the frontier entries discovered on the page
	Links []string `json:"links,omitempty"`
	Error string   `json:"error,omitempty"`
}

// Result is the outcome of a crawl loop
type Result struct {
	Pages []PageMap
	// Visited lists visited URLs in visit order
	Visited []string
}

// Elements returns every element found, in page visit order, before global deduplication
func (r *Result) Elements() []form.Element {
	var all []form.Element
	for _, p := range r.Pages {
		all = append(all, p.Elements...)
	}
	return all
}
