// Package model defines the data types shared across the research pipeline.
package model

// Caps applied when probing a site's structure.
const (
	MaxNavLinks      = 20
	MaxFooterChars   = 2000
	MaxMainChars     = 10000
	MaxSectionChars  = 100
	MaxNarrowedChars = 15000
	MaxFullPageChars = 100000
)

// NavLink is a navigation link candidate found on a landing page.
type NavLink struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// WebsiteStructure is a lightweight structural summary of a site's landing
// page. If Error is non-empty the remaining fields are unreliable and must
// not be used downstream.
type WebsiteStructure struct {
	Domain      string    `json:"domain"`
	Title       string    `json:"title"`
	Sections    []string  `json:"sections"`
	NavLinks    []NavLink `json:"nav_links"`
	FooterText  string    `json:"footer_text"`
	MainContent string    `json:"main_content"`
	Error       string    `json:"error,omitempty"`
}

// Category is a normalized site-region label used to target retrieval.
type Category string

const (
	CategoryFooter       Category = "footer"
	CategoryAbout        Category = "about"
	CategoryProducts     Category = "products"
	CategoryPricing      Category = "pricing"
	CategoryMainContent  Category = "main_content"
	CategorySpecificPage Category = "specific_page"
)

// AllCategories returns the enumerated category set.
func AllCategories() []Category {
	return []Category{
		CategoryFooter,
		CategoryAbout,
		CategoryProducts,
		CategoryPricing,
		CategoryMainContent,
		CategorySpecificPage,
	}
}

// LocationHint is the classifier's prediction of where a query's answer
// lives on a site. Category is always one of the enumerated set; RawLabel
// preserves the model's own (lower-cased) label for provenance.
type LocationHint struct {
	Category  Category `json:"category"`
	RawLabel  string   `json:"raw_label"`
	Rationale string   `json:"rationale,omitempty"`
}

// Answer is the structured answer extracted from narrowed site content.
// Found defaults to true; RawAnswer holds the model's verbatim reply when
// it did not produce a decodable JSON object.
type Answer struct {
	Answer     any    `json:"answer,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Evidence   string `json:"evidence,omitempty"`
	Found      bool   `json:"found"`
	RawAnswer  string `json:"rawAnswer,omitempty"`
}

// ResearchResult is the terminal outcome of one (domain, query) invocation.
// Every result is self-describing: Domain, Query, and Success are always
// set, so callers never infer failure from absence.
type ResearchResult struct {
	Domain          string  `json:"domain"`
	Query           string  `json:"query"`
	Success         bool    `json:"success"`
	Result          *Answer `json:"result,omitempty"`
	Error           string  `json:"error,omitempty"`
	SectionSearched string  `json:"section_searched,omitempty"`
	// TokensSaved is the character-count difference between the full main
	// content and the narrowed content actually sent. An approximate
	// diagnostic, not a billing-accurate token count.
	TokensSaved int `json:"tokens_saved,omitempty"`
}

// Company identifies one company to research.
type Company struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// CompanyResultSet groups one company's per-query results. Queries preserves
// submission order; Attributes is keyed by query string.
type CompanyResultSet struct {
	CompanyName string                    `json:"company_name"`
	Domain      string                    `json:"domain"`
	Queries     []string                  `json:"-"`
	Attributes  map[string]ResearchResult `json:"attributes"`
}
