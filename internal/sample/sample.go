// Package sample picks representative fill values for discovered controls
// from their label text and native input type.
package sample

import "strings"

// Fixed values used outside the keyword rules
const (
	DefaultText  = "Sample Text"
	TextAreaText = "This is sample text area content for testing purposes."
	FileName     = "resume.pdf"
)

type rule struct {
	keywords []string
	types    []string
	value    string
	// refine may replace value for a more specific match within the rule
	refine func(label string) string
}

func (r rule) matches(label, inputType string) bool {
	for _, t := range r.types {
		if inputType == t {
			return true
		}
	}
	return containsAny(label, r.keywords)
}

var textRules = []rule{
	{keywords: []string{"email"}, types: []string{"email"}, value: "test@example.com"},
	{keywords: []string{"phone", "mobile", "tel"}, value: "+1-555-123-4567"},
	{keywords: []string{"first name", "given name"}, value: "John"},
	{keywords: []string{"last name", "family name", "surname"}, value: "Doe"},
	{keywords: []string{"name", "applicant"}, value: "John Doe"},
	{keywords: []string{"address"}, value: "123 Main Street", refine: func(label string) string {
		if containsAny(label, []string{"line 2", "apt"}) {
			return "Apt 123"
		}
		return ""
	}},
	{keywords: []string{"city"}, value: "New York"},
	{keywords: []string{"state", "province"}, value: "NY"},
	{keywords: []string{"zip", "postal"}, value: "10001"},
	{keywords: []string{"years", "salary", "gpa"}, types: []string{"number"}, value: "5"},
	{keywords: []string{"website", "url"}, types: []string{"url"}, value: "https://example.com"},
}

var dateRules = []rule{
	{keywords: []string{"birth", "born", "dob"}, value: "1990-01-15"},
	{keywords: []string{"start", "begin", "from"}, value: "2020-01-01"},
	{keywords: []string{"end", "until", "to", "finish"}, value: "2023-12-31"},
	{keywords: []string{"graduation", "graduate", "degree"}, value: "2022-05-15"},
	{keywords: []string{"available", "prefer", "earliest"}, value: "2024-02-01"},
}

// DefaultDate is used when no date rule matches
const DefaultDate = "2023-06-15"

// Text returns a sample value for a text-like control. inputType is the
// native type attribute; empty means text.
func Text(label, inputType string) string {
	return apply(textRules, strings.ToLower(label), strings.ToLower(inputType), DefaultText)
}

// Date returns an ISO calendar date suited to the field's label
func Date(label string) string {
	return apply(dateRules, strings.ToLower(label), "", DefaultDate)
}

func apply(rules []rule, label, inputType, fallback string) string {
	for _, r := range rules {
		if !r.matches(label, inputType) {
			continue
		}
		if r.refine != nil {
			if v := r.refine(label); v != "" {
				return v
			}
		}
		return r.value
	}
	return fallback
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
