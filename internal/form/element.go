package form

import "time"

// Category is the kind of input control
type Category string

const (
	Text        Category = "text"
	TextArea    Category = "textarea"
	Select      Category = "select"
	MultiSelect Category = "multiselect"
	Checkbox    Category = "checkbox"
	Radio       Category = "radio"
	Date        Category = "date"
	File        Category = "file"
)

// Categories lists every category in extraction order
var Categories = []Category{Text, TextArea, Select, MultiSelect, Checkbox, Radio, Date, File}

// Element is one discovered input control
type Element struct {
	Label        string   `json:"label"`
	ID           string   `json:"id_of_input_component"`
	Required     bool     `json:"required"`
	Category     Category `json:"type_of_input"`
	Options      []string `json:"options"`
	SampleValues []string `json:"user_data_select_values"`
}

// Metadata describes one crawl run
type Metadata struct {
	RunID         string    `json:"run_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	TotalElements int       `json:"total_elements"`
	PagesVisited  int       `json:"pages_visited"`
	SourceURL     string    `json:"source_url"`
	VisitedURLs   []string  `json:"visited_urls"`
}

// Catalog is the exported result of a crawl
type Catalog struct {
	Metadata Metadata  `json:"metadata"`
	Elements []Element `json:"form_elements"`
}

// NewCatalog deduplicates elements and fills the derived metadata counts
func NewCatalog(meta Metadata, elements []Element) *Catalog {
	unique := Dedup(elements)
	meta.TotalElements = len(unique)
	meta.PagesVisited = len(meta.VisitedURLs)
	return &Catalog{Metadata: meta, Elements: unique}
}

// Dedup removes elements whose ID was already seen, keeping the first occurrence
// and preserving order
func Dedup(elements []Element) []Element {
	seen := make(map[string]struct{}, len(elements))
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if _, ok := seen[el.ID]; ok {
			continue
		}
		seen[el.ID] = struct{}{}
		out = append(out, el)
	}
	return out
}

// CountByCategory tallies elements per category
func CountByCategory(elements []Element) map[Category]int {
	counts := make(map[Category]int)
	for _, el := range elements {
		counts[el.Category]++
	}
	return counts
}
